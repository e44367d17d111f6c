package boxplot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mpedy/myboxplot/pkg/survey"
)

// Flag is a privacy flag value as delivered by the data source.
type Flag string

// Flag values.
const (
	FlagYes Flag = "SI"
	FlagNo  Flag = "NO"
)

// ErrInvalidFlag is returned by ParseFlag for values other than SI/NO.
var ErrInvalidFlag = errors.New("invalid privacy flag")

// ParseFlag parses a flag case-insensitively. An empty string is FlagNo.
func ParseFlag(raw string) (Flag, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case string(FlagYes):
		return FlagYes, nil
	case string(FlagNo), "":
		return FlagNo, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFlag, raw)
	}
}

// Observation is one respondent's score for one category, already scaled to
// the percentage domain.
type Observation struct {
	Category    survey.Category `json:"category"     yaml:"category"`
	Value       float64         `json:"value"        yaml:"value"`
	FlagDept    Flag            `json:"flag_dept"    yaml:"flag_dept"`
	FlagProgram Flag            `json:"flag_program" yaml:"flag_program"`
}

// View selects one of the three parallel views.
type View int

// Views, in ViewSet field order.
const (
	ViewAll View = iota
	ViewDept
	ViewProgram
)

// Views returns all views in ViewSet field order.
func Views() []View {
	return []View{ViewAll, ViewDept, ViewProgram}
}

func (v View) String() string {
	switch v {
	case ViewAll:
		return "all"
	case ViewDept:
		return "dept"
	case ViewProgram:
		return "program"
	default:
		return fmt.Sprintf("view(%d)", int(v))
	}
}

// ViewSet holds one summary per category for each view. The three slices
// have equal length and list categories in first-seen order.
type ViewSet struct {
	All       []Summary `json:"all"                 yaml:"all"`
	ByDept    []Summary `json:"filtered_by_dept"    yaml:"filtered_by_dept"`
	ByProgram []Summary `json:"filtered_by_program" yaml:"filtered_by_program"`
}

// View returns the summaries of one view.
func (vs ViewSet) View(v View) []Summary {
	switch v {
	case ViewAll:
		return vs.All
	case ViewDept:
		return vs.ByDept
	case ViewProgram:
		return vs.ByProgram
	default:
		return nil
	}
}

// Len returns the number of categories.
func (vs ViewSet) Len() int {
	return len(vs.All)
}

// SelectionKey derives the opaque selection key of the category found at
// position index of an update cycle.
func SelectionKey(index int, category survey.Category) string {
	return fmt.Sprintf("category:%d:%s", index, string(category))
}

// buckets collects the values of one category per view.
type buckets struct {
	identity  Identity
	all       []float64
	byDept    []float64
	byProgram []float64
}

func (b *buckets) values(v View) []float64 {
	switch v {
	case ViewDept:
		return b.byDept
	case ViewProgram:
		return b.byProgram
	default:
		return b.all
	}
}

// Aggregate groups observations by category and summarizes every category
// under the three views. Identities are built once per category, in
// first-seen order, and shared by the three views. overrides is only read.
func Aggregate(observations []Observation, overrides map[survey.Category]survey.Color) (ViewSet, error) {
	index := make(map[survey.Category]int)
	groups := make([]*buckets, 0)

	for _, obs := range observations {
		pos, seen := index[obs.Category]
		if !seen {
			color, err := survey.ResolveColor(obs.Category, overrides)
			if err != nil {
				return ViewSet{}, fmt.Errorf("aggregate: %w", err)
			}

			pos = len(groups)
			index[obs.Category] = pos
			groups = append(groups, &buckets{identity: Identity{
				Category:     obs.Category,
				Color:        color,
				SelectionKey: SelectionKey(pos, obs.Category),
			}})
		}

		group := groups[pos]
		group.all = append(group.all, obs.Value)

		if obs.FlagDept == FlagYes {
			group.byDept = append(group.byDept, obs.Value)
		}

		if obs.FlagProgram == FlagYes {
			group.byProgram = append(group.byProgram, obs.Value)
		}
	}

	result := ViewSet{
		All:       make([]Summary, 0, len(groups)),
		ByDept:    make([]Summary, 0, len(groups)),
		ByProgram: make([]Summary, 0, len(groups)),
	}

	for _, group := range groups {
		for _, view := range Views() {
			values := group.values(view)
			if len(values) == 0 {
				return ViewSet{}, &InsufficientDataError{Category: group.identity.Category, View: view}
			}

			summary, err := Summarize(values, group.identity.Category, group.identity)
			if err != nil {
				return ViewSet{}, fmt.Errorf("aggregate %s view: %w", view, err)
			}

			switch view {
			case ViewAll:
				result.All = append(result.All, summary)
			case ViewDept:
				result.ByDept = append(result.ByDept, summary)
			case ViewProgram:
				result.ByProgram = append(result.ByProgram, summary)
			}
		}
	}

	return result, nil
}
