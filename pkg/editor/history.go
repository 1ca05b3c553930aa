package editor

import "github.com/goliatone/go-formbuilder/pkg/model"

type snapshot struct {
	fields []model.Field
	rules  []model.Rule
}

// history is a linear undo stack. Pushing after an undo drops the redo tail.
type history struct {
	entries []snapshot
	index   int
}

func newHistory(form model.Form) *history {
	h := &history{}
	h.entries = []snapshot{take(form)}
	return h
}

func take(form model.Form) snapshot {
	return snapshot{fields: model.Clone(form.Fields), rules: model.CloneRules(form.Rules)}
}

func (h *history) push(form model.Form) {
	h.entries = append(h.entries[:h.index+1], take(form))
	if over := len(h.entries) - HistoryLimit; over > 0 {
		h.entries = append([]snapshot(nil), h.entries[over:]...)
	}
	h.index = len(h.entries) - 1
}

func (h *history) undo() (snapshot, bool) {
	if h.index <= 0 {
		return snapshot{}, false
	}
	h.index--
	return h.entries[h.index], true
}

func (h *history) redo() (snapshot, bool) {
	if h.index >= len(h.entries)-1 {
		return snapshot{}, false
	}
	h.index++
	return h.entries[h.index], true
}
