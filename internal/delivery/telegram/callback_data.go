package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionHint     = "hint"
	actionSolution = "solution"
	actionNext     = "next"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// questionID returns the first parameter as a question id.
func (cd callbackData) questionID() (int, bool) {
	if len(cd.Params) != 1 {
		return 0, false
	}
	id, err := strconv.Atoi(cd.Params[0])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func buildHintCallback(questionID int) string {
	return callbackData{
		Action: actionHint,
		Params: []string{strconv.Itoa(questionID)},
	}.encode()
}

func buildSolutionCallback(questionID int) string {
	return callbackData{
		Action: actionSolution,
		Params: []string{strconv.Itoa(questionID)},
	}.encode()
}

// buildNextCallback builds callback data for the next question. An empty topic
// leaves the choice to the adaptive selector.
func buildNextCallback(subject, topic string) string {
	params := []string{subject}
	if topic != "" {
		params = append(params, topic)
	}
	return callbackData{
		Action: actionNext,
		Params: params,
	}.encode()
}
