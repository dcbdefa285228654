package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/lumenlearn/lumen/internal/domain"
)

func echoTool(name string, schema []ArgSpec) Tool {
	return Tool{
		Name:   name,
		Schema: schema,
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return map[string]string{"ok": "true"}, nil
		},
	}
}

func TestRegistry_DuplicateRegistration(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(echoTool("dup", nil)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(echoTool("dup", nil)); err == nil {
		t.Fatal("duplicate registration should fail")
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	r := NewRegistry(nil)
	_, err := r.Invoke(context.Background(), "missing", json.RawMessage(`{}`))
	if !errors.Is(err, domain.ErrUnknownTool) {
		t.Fatalf("err = %v, want ErrUnknownTool", err)
	}
}

func TestInvoke_SchemaValidation(t *testing.T) {
	schema := []ArgSpec{
		{Name: "topic", Kind: ArgString, Required: true},
		{Name: "duration", Kind: ArgNumber, Required: true},
		{Name: "note", Kind: ArgString},
	}

	tests := []struct {
		name    string
		args    string
		wantErr bool
	}{
		{name: "valid", args: `{"topic":"loans","duration":30}`},
		{name: "optional omitted", args: `{"topic":"loans","duration":0}`},
		{name: "not an object", args: `[1,2]`, wantErr: true},
		{name: "missing required string", args: `{"duration":30}`, wantErr: true},
		{name: "empty required string", args: `{"topic":"","duration":30}`, wantErr: true},
		{name: "wrong string type", args: `{"topic":7,"duration":30}`, wantErr: true},
		{name: "missing required number", args: `{"topic":"loans"}`, wantErr: true},
		{name: "wrong number type", args: `{"topic":"loans","duration":"30"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(nil)
			if err := r.Register(echoTool("t", schema)); err != nil {
				t.Fatalf("register: %v", err)
			}

			_, err := r.Invoke(context.Background(), "t", json.RawMessage(tt.args))
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidArguments) {
					t.Fatalf("err = %v, want ErrInvalidArguments", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
		})
	}
}

func TestInvoke_HandlerNotCalledOnInvalidArgs(t *testing.T) {
	r := NewRegistry(nil)
	called := false
	err := r.Register(Tool{
		Name:   "guarded",
		Schema: []ArgSpec{{Name: "topic", Kind: ArgString, Required: true}},
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			called = true
			return nil, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "guarded", json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected validation error")
	}
	if called {
		t.Error("handler ran despite invalid arguments")
	}
}

func TestInvoke_HandlerErrorSurfaces(t *testing.T) {
	r := NewRegistry(nil)
	boom := errors.New("handler failed")
	err := r.Register(Tool{
		Name: "failing",
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return nil, boom
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "failing", json.RawMessage(`{}`)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestInvoke_ResultMarshaled(t *testing.T) {
	r := NewRegistry(nil)
	err := r.Register(Tool{
		Name: "typed",
		Handler: func(ctx context.Context, args json.RawMessage) (any, error) {
			return quizEvaluation{Correct: true, ConfidenceScore: 1}, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := r.Invoke(context.Background(), "typed", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	var eval quizEvaluation
	if err := json.Unmarshal(out, &eval); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if !eval.Correct {
		t.Error("result lost through marshaling")
	}
}
