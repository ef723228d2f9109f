// Package compose turns a word card into a training task.
package compose

import "github.com/abhisek/lasty/internal/tasktype"

// Blank replaces the practice word in fill-blank and multiple-choice
// sentences.
const Blank = "_____"

// Task is one exercise for one word. It is immutable once built.
type Task struct {
	ID       string // ULID, unique within the process
	WordID   string
	Language string // language the answer is written in
	Type     tasktype.Type

	Prompt   string // instruction shown to the learner
	Native   string // the word in the learner's native language
	Sentence string // target-language sentence, with Blank where applicable
	Options  []string

	// Answer is the expected answer, always the target-language word.
	Answer string

	// Reference is a translation of the sentence into the learner's native
	// language. Empty when unavailable.
	Reference string

	// Degraded marks a bare word-pair task built without generated content.
	Degraded bool
}

// HasOptions reports whether the task is answered by picking an option.
func (t *Task) HasOptions() bool {
	return len(t.Options) > 0
}
