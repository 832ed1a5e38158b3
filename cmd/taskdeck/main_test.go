package main

import (
	"reflect"
	"testing"
)

func TestRewriteDirectTaskLookupArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "no args",
			in:   []string{"taskdeck"},
			want: []string{"taskdeck"},
		},
		{
			name: "direct task id first token",
			in:   []string{"taskdeck", "task-abc123"},
			want: []string{"taskdeck", "tasks", "show", "task-abc123"},
		},
		{
			name: "direct task id after value flag",
			in:   []string{"taskdeck", "--dir", "./tmp-test-ws", "task-abc123"},
			want: []string{"taskdeck", "--dir", "./tmp-test-ws", "tasks", "show", "task-abc123"},
		},
		{
			name: "direct task id after equals flag",
			in:   []string{"taskdeck", "--dir=./tmp-test-ws", "task-abc123"},
			want: []string{"taskdeck", "--dir=./tmp-test-ws", "tasks", "show", "task-abc123"},
		},
		{
			name: "direct task id after bool flag",
			in:   []string{"taskdeck", "--pretty", "task-abc123"},
			want: []string{"taskdeck", "--pretty", "tasks", "show", "task-abc123"},
		},
		{
			name: "direct task id after double dash",
			in:   []string{"taskdeck", "--dir", "./tmp-test-ws", "--", "task-abc123"},
			want: []string{"taskdeck", "--dir", "./tmp-test-ws", "--", "tasks", "show", "task-abc123"},
		},
		{
			name: "normal subcommand not rewritten",
			in:   []string{"taskdeck", "tasks", "show", "task-abc123"},
			want: []string{"taskdeck", "tasks", "show", "task-abc123"},
		},
		{
			name: "unknown command not rewritten",
			in:   []string{"taskdeck", "wat"},
			want: []string{"taskdeck", "wat"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := rewriteDirectTaskLookupArgs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("rewriteDirectTaskLookupArgs(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
