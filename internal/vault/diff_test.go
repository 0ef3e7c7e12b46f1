package vault

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func summary(service, username string) Summary {
	ts := time.Unix(1700000000, 0)
	return Summary{Service: service, Username: username, CreatedAt: ts, UpdatedAt: ts}
}

func TestDiffSummaries(t *testing.T) {
	committed := []Summary{summary("bank", "alice"), summary("mail", "bob")}
	current := []Summary{summary("bank", "alice"), summary("github", "carol")}

	lines := DiffSummaries(committed, current)

	var added, removed []string
	for _, l := range lines {
		switch l.Op {
		case DiffAdded:
			added = append(added, l.Text)
		case DiffRemoved:
			removed = append(removed, l.Text)
		}
	}
	assert.Len(t, added, 1)
	assert.Contains(t, added[0], "github\tcarol")
	assert.Len(t, removed, 1)
	assert.Contains(t, removed[0], "mail\tbob")
}

func TestDiffSummariesUnchanged(t *testing.T) {
	s := []Summary{summary("bank", "alice")}
	assert.Empty(t, DiffSummaries(s, s))
	assert.Empty(t, DiffSummaries(nil, nil))
}

func TestDiffLineString(t *testing.T) {
	assert.Equal(t, "+ a", DiffLine{Op: DiffAdded, Text: "a"}.String())
	assert.Equal(t, "- a", DiffLine{Op: DiffRemoved, Text: "a"}.String())
}
