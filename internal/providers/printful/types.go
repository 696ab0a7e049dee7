package printful

import "strings"

// Task statuses reported by the mockup generator.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)

// Position is the print-area rectangle the image is composited into.
type Position struct {
	AreaWidth  int `json:"area_width"`
	AreaHeight int `json:"area_height"`
	Width      int `json:"width"`
	Height     int `json:"height"`
	Top        int `json:"top"`
	Left       int `json:"left"`
}

// File places one image on a product placement.
type File struct {
	Placement string   `json:"placement"`
	ImageURL  string   `json:"image_url"`
	Position  Position `json:"position"`
}

// CreateTaskRequest is the body of a mockup render submission.
type CreateTaskRequest struct {
	VariantIDs []int  `json:"variant_ids"`
	Format     string `json:"format"`
	Files      []File `json:"files"`
}

// ExtraMockup is an auxiliary rendered view, e.g. a front or back shot.
type ExtraMockup struct {
	Title  string `json:"title"`
	Option string `json:"option"`
	URL    string `json:"url"`
}

// Mockup is one rendered image returned by the provider.
type Mockup struct {
	Placement  string        `json:"placement,omitempty"`
	VariantIDs []int         `json:"variant_ids,omitempty"`
	MockupURL  string        `json:"mockup_url"`
	Extra      []ExtraMockup `json:"extra,omitempty"`
}

// Task is the decoded state of an asynchronous render.
type Task struct {
	Key     string   `json:"task_key"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Mockups []Mockup `json:"mockups,omitempty"`
}

type envelope struct {
	Code   int  `json:"code"`
	Result Task `json:"result"`
}

// OutcomeKind distinguishes the two shapes a render submission can take.
type OutcomeKind int

const (
	OutcomeImmediate OutcomeKind = iota + 1
	OutcomeTask
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeImmediate:
		return "immediate"
	case OutcomeTask:
		return "task"
	default:
		return "unknown"
	}
}

// SubmitOutcome is either an immediate mockup URL or a task key to poll.
type SubmitOutcome struct {
	Kind      OutcomeKind
	MockupURL string
	TaskKey   string
}

// SelectMockupURL returns the extra view labelled "front" from any mockup
// when the provider supplied one, and the first primary mockup URL otherwise.
// Matching is a case-insensitive substring test on the extra's title or option.
func SelectMockupURL(mockups []Mockup) string {
	for _, m := range mockups {
		for _, extra := range m.Extra {
			if extra.URL == "" {
				continue
			}
			if containsFold(extra.Title, "front") || containsFold(extra.Option, "front") {
				return extra.URL
			}
		}
	}
	for _, m := range mockups {
		if m.MockupURL != "" {
			return m.MockupURL
		}
	}
	return ""
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
