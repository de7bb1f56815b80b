// Package trialconfig reads trial definitions and derives the maximum score
// of each order from its task structure.
package trialconfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/signalnine/scorekeeper/internal/logger"
	"github.com/signalnine/scorekeeper/internal/result"
)

// Task types.
const (
	Kitting  = "kitting"
	Assembly = "assembly"
	Combined = "combined"
)

var (
	// ErrNoOrders is returned when a trial file defines no orders.
	ErrNoOrders = errors.New("no orders in trial config")
	// ErrTaskDefect marks an order whose task cannot yield a max score.
	ErrTaskDefect = errors.New("order task defect")
)

var validate = validator.New()

// File is the parsed form of a trial configuration.
type File struct {
	Orders []Order `yaml:"orders"`
}

type Order struct {
	ID           string `yaml:"id" validate:"required"`
	Type         string `yaml:"type" validate:"required,oneof=kitting assembly combined"`
	Priority     bool   `yaml:"priority"`
	KittingTask  *Task  `yaml:"kitting_task"`
	AssemblyTask *Task  `yaml:"assembly_task"`
	CombinedTask *Task  `yaml:"combined_task"`
}

// Task is the part of an order that lists the products to handle. Other
// task attributes (agv, station, tray) do not influence scoring.
type Task struct {
	Products []yaml.Node `yaml:"products" validate:"required"`
}

func (o Order) task() *Task {
	switch o.Type {
	case Kitting:
		return o.KittingTask
	case Assembly:
		return o.AssemblyTask
	case Combined:
		return o.CombinedTask
	}
	return nil
}

// MaxScore returns the maximum attainable score of an order:
// kitting 1+4P, assembly 4P, combined 6P for P products. Orders whose task
// is missing or malformed score 0 and return an ErrTaskDefect error. Task
// blocks of other types are ignored.
func MaxScore(o Order) (int, error) {
	if err := validate.StructPartial(o, "ID", "Type"); err != nil {
		return 0, fmt.Errorf("%w: order %q: %v", ErrTaskDefect, o.ID, err)
	}
	task := o.task()
	if task == nil {
		return 0, fmt.Errorf("%w: order %q: no %s_task", ErrTaskDefect, o.ID, o.Type)
	}
	if err := validate.Struct(task); err != nil {
		return 0, fmt.Errorf("%w: order %q: %v", ErrTaskDefect, o.ID, err)
	}
	p := len(task.Products)
	switch o.Type {
	case Kitting:
		return 1 + 3*p + p, nil
	case Assembly:
		return 4 * p, nil
	default:
		return 6 * p, nil
	}
}

// Read parses the trial configuration at path.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trial config %s: %w", path, err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing trial config %s: %w", path, err)
	}
	if len(f.Orders) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoOrders)
	}
	return &f, nil
}

// OrderInfos converts parsed orders into OrderInfo values in file order.
// Orders without an id or with a duplicate id are dropped; every defect
// found along the way is returned alongside the usable orders.
func (f *File) OrderInfos() ([]result.OrderInfo, []error) {
	var (
		infos   []result.OrderInfo
		defects []error
		seen    = make(map[string]struct{}, len(f.Orders))
	)
	for i, o := range f.Orders {
		if o.ID == "" {
			defects = append(defects, fmt.Errorf("order %d: id is required", i))
			continue
		}
		if _, dup := seen[o.ID]; dup {
			defects = append(defects, fmt.Errorf("order %d: duplicate id %q", i, o.ID))
			continue
		}
		seen[o.ID] = struct{}{}
		maxScore, err := MaxScore(o)
		if err != nil {
			defects = append(defects, err)
		}
		infos = append(infos, result.OrderInfo{OrderID: o.ID, Priority: o.Priority, MaxScore: maxScore})
	}
	return infos, defects
}

// Reader loads trial configurations from a directory of <trial>.yaml files.
type Reader struct {
	dir string
	log logger.Logger
}

func NewReader(dir string, log logger.Logger) *Reader {
	return &Reader{dir: dir, log: log.Named("trialconfig")}
}

func (r *Reader) Path(trial string) string {
	return filepath.Join(r.dir, trial+".yaml")
}

// Orders returns the order list of trial. It never fails: a missing or
// unparsable file yields an empty list, which callers treat as nothing to
// score. Order-level defects are logged as warnings.
func (r *Reader) Orders(ctx context.Context, trial string) []result.OrderInfo {
	path := r.Path(trial)
	f, err := Read(path)
	if err != nil {
		r.log.Warn(ctx, "trial config unusable", logger.Trial(trial), logger.Path(path), logger.Error(err))
		return nil
	}
	infos, defects := f.OrderInfos()
	for _, d := range defects {
		r.log.Warn(ctx, "trial config defect", logger.Trial(trial), logger.Path(path), logger.Error(d))
	}
	return infos
}
