package engine

import (
	"errors"
	"strings"
	"testing"
)

func TestEnforce_DuplicateTags(t *testing.T) {
	in := "data_a\n_c.k 1\n_C.K 2\ndata_b\n_c.k 3\n"
	tests := []struct {
		name       string
		mode       DuplicateStrictness
		wantIssues int
		wantErr    bool
	}{
		{"ignore", DupIgnore, 0, false},
		{"warn", DupWarn, 1, false},
		{"error", DupError, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []SimpleIssue
			src := WrapWithEnforcement(NewCIFSource(strings.NewReader(in)), EnforceOptions{
				OnDuplicate: tt.mode,
				IssueSink:   func(si SimpleIssue) { got = append(got, si) },
			})
			_, err := drain(t, src)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != tt.wantIssues {
				t.Fatalf("got %d issues, want %d: %+v", len(got), tt.wantIssues, got)
			}
			if tt.wantErr {
				var ie IssueError
				if !errors.As(err, &ie) || ie.Code != "duplicate_tag" || ie.Line != 3 {
					t.Fatalf("unexpected error: %#v", err)
				}
			}
		})
	}
}

func TestEnforce_LoopRowsAreNotDuplicates(t *testing.T) {
	in := "loop_ _c.k 1 2 3\n"
	src := WrapWithEnforcement(NewCIFSource(strings.NewReader(in)), EnforceOptions{OnDuplicate: DupError})
	if _, err := drain(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforce_LoopTagAfterItem(t *testing.T) {
	in := "_c.k 1\nloop_ _c.k 2 3\n"
	src := WrapWithEnforcement(NewCIFSource(strings.NewReader(in)), EnforceOptions{OnDuplicate: DupError})
	if _, err := drain(t, src); err == nil {
		t.Fatalf("expected duplicate tag error")
	}
}

func TestEnforce_FramesHaveOwnScope(t *testing.T) {
	in := "_c.k 1\nsave_f\n_c.k 2\nsave_\nsave_g\n_c.k 3\nsave_\n"
	src := WrapWithEnforcement(NewCIFSource(strings.NewReader(in)), EnforceOptions{OnDuplicate: DupError})
	if _, err := drain(t, src); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnforce_MaxBytes(t *testing.T) {
	in := "_c.a 1\n_c.b 2\n_c.c 3\n"
	src := WrapWithEnforcement(NewCIFSource(strings.NewReader(in)), EnforceOptions{MaxBytes: 8})
	_, err := drain(t, src)
	var ie IssueError
	if !errors.As(err, &ie) || ie.Code != "truncated" {
		t.Fatalf("expected truncated issue, got %v", err)
	}
}
