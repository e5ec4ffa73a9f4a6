package leaderboard

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honorbot/models"
)

func TestStandingsImageGenerator_RenderAllTime(t *testing.T) {
	g := newStandingsImageGenerator()

	accounts := []*models.UserAccount{
		{UserID: 1, DisplayName: "alice", Balance: 1250},
		{UserID: 2, DisplayName: "bob", Balance: 900},
		{UserID: 3, DisplayName: "carol", Balance: 420},
		{UserID: 4, DisplayName: "dave", Balance: 10},
	}

	data, err := g.renderAllTime(accounts)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, g.width, bounds.Dx())
	// Header band, four rows, bottom padding.
	assert.Equal(t, 25+30+4*g.rowHeight+15, bounds.Dy())
}

func TestStandingsImageGenerator_RenderMonthly(t *testing.T) {
	g := newStandingsImageGenerator()

	standings := []*models.MonthlyStanding{
		{UserID: 1, DisplayName: "alice", Earned: 300},
		{UserID: 2, DisplayName: "bob", Earned: 120},
	}

	data, err := g.renderMonthly(standings)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 25+30+2*g.rowHeight+15, img.Bounds().Dy())
}

func TestAttachStandingsImage(t *testing.T) {
	t.Run("swaps text for image on success", func(t *testing.T) {
		embed := buildAllTimeEmbed([]*models.UserAccount{{DisplayName: "alice", Balance: 5}})
		files := attachStandingsImage(embed, []byte("png-bytes"), nil)

		require.Len(t, files, 1)
		assert.Equal(t, standingsImageName, files[0].Name)
		assert.Empty(t, embed.Description)
		require.NotNil(t, embed.Image)
		assert.Equal(t, "attachment://"+standingsImageName, embed.Image.URL)
	})

	t.Run("keeps text fallback on render failure", func(t *testing.T) {
		embed := buildAllTimeEmbed([]*models.UserAccount{{DisplayName: "alice", Balance: 5}})
		description := embed.Description

		files := attachStandingsImage(embed, nil, assert.AnError)

		assert.Nil(t, files)
		assert.Equal(t, description, embed.Description)
		assert.Nil(t, embed.Image)
	})
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short"))
	assert.Equal(t, "exactly16chars!!", truncateName("exactly16chars!!"))
	assert.Equal(t, "averylongdispla…", truncateName("averylongdisplayname"))
	// Multi-byte names truncate on runes, not bytes.
	assert.Equal(t, "ぬぬぬぬぬぬぬぬぬぬぬぬぬぬぬ…", truncateName("ぬぬぬぬぬぬぬぬぬぬぬぬぬぬぬぬぬ"))
}
