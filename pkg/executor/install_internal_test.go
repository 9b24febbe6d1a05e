package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halfdome/devkit/pkg/catalog"
)

func TestCommitOrder_PresencePathEntryLast(t *testing.T) {
	c := catalog.Component{
		PresencePath: "{prefix}/bin/nvim",
		Archive: &catalog.ArchiveSource{
			Entries: []catalog.ArchiveEntry{
				{Src: "bin/nvim", Dst: "bin/nvim"},
				{Src: "lib/nvim", Dst: "lib/nvim"},
				{Src: "share/nvim", Dst: "share/nvim"},
			},
		},
	}

	ordered := commitOrder(c)
	require.Len(t, ordered, 3)
	assert.Equal(t, "bin/nvim", ordered[2].Dst,
		"the path the detector probes must be the last thing committed")
	assert.Equal(t, "lib/nvim", ordered[0].Dst)
	assert.Equal(t, "share/nvim", ordered[1].Dst)
}

func TestCommitOrder_NoPresenceMatchKeepsOrder(t *testing.T) {
	c := catalog.Component{
		PresencePath: "~/.local/share/tool",
		Archive: &catalog.ArchiveSource{
			Entries: []catalog.ArchiveEntry{
				{Src: "a", Dst: "bin/a"},
				{Src: "b", Dst: "bin/b"},
			},
		},
	}

	ordered := commitOrder(c)
	require.Len(t, ordered, 2)
	assert.Equal(t, "bin/a", ordered[0].Dst)
	assert.Equal(t, "bin/b", ordered[1].Dst)
}
