package jsonrpc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType string
		wantCode ErrorCode
	}{
		{"request", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`, "request", 0},
		{"string id", `{"jsonrpc":"2.0","id":"abc","method":"ping"}`, "request", 0},
		{"notification", `{"jsonrpc":"2.0","method":"notifications/initialized"}`, "notification", 0},
		{"response", `{"jsonrpc":"2.0","id":7,"result":{}}`, "response", 0},
		{"parse error", `{"jsonrpc":`, "", ParseError},
		{"wrong version", `{"jsonrpc":"1.0","id":1,"method":"ping"}`, "", InvalidRequest},
		{"no method", `{"jsonrpc":"2.0","id":1}`, "", InvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseMessage([]byte(tt.input))

			if tt.wantCode != 0 {
				var rpcErr *Error
				if !errors.As(err, &rpcErr) {
					t.Fatalf("Expected *Error, got %v", err)
				}
				if rpcErr.Code != tt.wantCode {
					t.Errorf("Expected code %d, got %d", tt.wantCode, rpcErr.Code)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			var got string
			switch msg.(type) {
			case *Request:
				got = "request"
			case *Notification:
				got = "notification"
			case *Response:
				got = "response"
			}
			if got != tt.wantType {
				t.Errorf("Expected %s, got %T", tt.wantType, msg)
			}
		})
	}
}

func TestParseMessage_KeepsParams(t *testing.T) {
	msg, err := ParseMessage([]byte(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"x"}}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	req := msg.(*Request)
	if string(req.Params) != `{"name":"x"}` {
		t.Errorf("Expected raw params, got %s", req.Params)
	}
	if req.ID != float64(1) {
		t.Errorf("Expected numeric id, got %#v", req.ID)
	}
}

func TestResponseEncoding(t *testing.T) {
	b, err := json.Marshal(NewErrorResponse(nil, NewError(MethodNotFound, "Method not found", "foo")))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"jsonrpc":"2.0","id":null,"error":{"code":-32601,"message":"Method not found","data":"foo"}}`
	if string(b) != want {
		t.Errorf("Expected %s, got %s", want, b)
	}

	b, _ = json.Marshal(NewResult("a", struct{}{}))
	if string(b) != `{"jsonrpc":"2.0","id":"a","result":{}}` {
		t.Errorf("Unexpected result encoding %s", b)
	}
}
