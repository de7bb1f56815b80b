package runlog

import (
	"context"

	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/result"
)

// Parser reads reports from disk for the scoring engine. Read failures are
// logged and degrade to absent values; they are never returned.
type Parser struct {
	log logger.Logger
}

func NewParser(log logger.Logger) *Parser {
	return &Parser{log: log.Named("runlog")}
}

// Load parses the report at path, or returns false after logging why it
// could not be read.
func (p *Parser) Load(ctx context.Context, path string) (*Report, bool) {
	rep, err := ParseFile(path)
	if err != nil {
		p.log.Error(ctx, "unable to read trial log", logger.Path(path), logger.Error(err))
		return nil, false
	}
	return rep, true
}

// CompletionTime returns the overall completion time of the run at path.
func (p *Parser) CompletionTime(ctx context.Context, path string) (float64, bool) {
	rep, ok := p.Load(ctx, path)
	if !ok {
		return 0, false
	}
	t, err := rep.CompletionTime()
	if err != nil {
		p.log.Warn(ctx, "no completion time in trial log", logger.Path(path), logger.Error(err))
		return 0, false
	}
	return t, true
}

// OrderSubmissions returns the submissions recorded at path for ids. An
// unreadable report yields every id as absent.
func (p *Parser) OrderSubmissions(ctx context.Context, ids []string, path string) result.Submissions {
	rep, ok := p.Load(ctx, path)
	if !ok {
		return result.Absent(ids)
	}
	subs := rep.OrderSubmissions(ids)
	for _, id := range ids {
		if subs[id] == nil {
			p.log.Debug(ctx, "order not submitted or unparsable", logger.Path(path), logger.String("order", id))
		}
	}
	return subs
}
