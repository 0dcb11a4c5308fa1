package analyzer

import "context"

// mockCompleter returns a canned completion and records the call.
type mockCompleter struct {
	response string
	err      error

	calls      int
	lastSystem string
	lastUser   string
}

func (m *mockCompleter) Complete(_ context.Context, _, system, user string) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}
