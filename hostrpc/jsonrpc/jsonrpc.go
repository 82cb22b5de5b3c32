package jsonrpc

import "encoding/json"

var Version = "2.0"

// Request ids are kept raw, hosts may use either strings or numbers.
type Request struct {
	JsonRpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Id      json.RawMessage `json:"id"`
	Params  json.RawMessage `json:"params"`
}

type Response struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
}

type Error struct {
	JsonRpc string          `json:"jsonrpc"`
	Id      json.RawMessage `json:"id"`
	Error   ErrorBody       `json:"error"`
}

type ErrorBody struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ErrorData tells the host which error family and kind a binding error
// belongs to, so it can raise the matching typed error.
type ErrorData struct {
	Family string `json:"family"`
	Kind   string `json:"kind"`
}
