package calculator

import "github.com/joaograca03/CalcApp/internal/keypad"

// PressRequest is the JSON body for POST /calculator/press.
type PressRequest struct {
	Token string `json:"token"` // a button label such as "7", "+/-" or "√"
}

// SequenceRequest is the JSON body for POST /calculator/sequence.
type SequenceRequest struct {
	Tokens []string `json:"tokens"`
}

// SequenceResponse is the JSON response for POST /calculator/sequence.
type SequenceResponse struct {
	Steps   []Step       `json:"steps"`
	Display DisplayState `json:"display"`
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string `json:"expression"`
}

// EvaluateResponse is the JSON response for POST /calculator/evaluate.
type EvaluateResponse struct {
	Expression string `json:"expression"`
	Result     string `json:"result"`
	Backend    string `json:"backend"`
}

// HistoryResponse lists the history, newest first.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// CopyResponse reports what was written to the clipboard.
type CopyResponse struct {
	Index  int    `json:"index"`
	Result string `json:"result"`
}

// ClipboardResponse is the JSON response for GET /calculator/clipboard.
type ClipboardResponse struct {
	Text string `json:"text"`
}

// KeypadResponse is the JSON response for GET /calculator/keypad.
type KeypadResponse struct {
	Rows [][]keypad.Button `json:"rows"`
}
