package main

import "testing"

func TestNewApp_Commands(t *testing.T) {
	app := newApp()
	for _, name := range []string{"aggregate", "group", "scan", "extract", "runs", "config", "quickstart"} {
		if app.Command(name) == nil {
			t.Errorf("command %q not registered", name)
		}
	}
	runs := app.Command("runs")
	for _, name := range []string{"list", "show", "get", "delete"} {
		if runs.Command(name) == nil {
			t.Errorf("runs subcommand %q not registered", name)
		}
	}
}

func TestNewApp_BaselineRequired(t *testing.T) {
	if err := newApp().Run([]string{"llp", "--quiet", "aggregate", t.TempDir()}); err == nil {
		t.Error("aggregate without --baseline error = nil, want error")
	}
}
