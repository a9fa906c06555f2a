package service

import (
	"fmt"
	"strings"

	"github.com/wricardo/tmge/game/engine"
)

// ParseInput converts the wire form of an input into an engine command
func ParseInput(req InputRequest) (engine.Input, error) {
	forms := 0
	if req.Key != "" {
		forms++
	}
	if req.Row != nil || req.Col != nil {
		forms++
	}
	if req.Action != "" {
		forms++
	}
	if forms != 1 {
		return engine.Input{}, fmt.Errorf("%w: exactly one of key, row/col or action is required", ErrInvalidInput)
	}

	switch {
	case req.Key != "":
		key, ok := engine.ParseKey(req.Key)
		if !ok {
			return engine.Input{}, fmt.Errorf("%w: unknown key %q (valid: LEFT, RIGHT, DOWN, UP, SPACE, TAB)", ErrInvalidInput, req.Key)
		}
		return engine.KeyInput(key), nil

	case req.Action != "":
		if !strings.EqualFold(strings.TrimSpace(req.Action), ActionSwitchPlayer) {
			return engine.Input{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, req.Action)
		}
		return engine.SwitchPlayerInput(), nil

	default:
		if req.Row == nil || req.Col == nil {
			return engine.Input{}, fmt.Errorf("%w: row and col must be given together", ErrInvalidInput)
		}
		return engine.SelectInput(*req.Row, *req.Col), nil
	}
}

// describeInput renders an input for results and logs
func describeInput(in engine.Input) string {
	switch in.Kind {
	case engine.InputKey:
		return string(in.Key)
	case engine.InputSelect:
		return fmt.Sprintf("select(%d,%d)", in.Row, in.Col)
	default:
		return in.Kind.String()
	}
}
