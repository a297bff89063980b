package replicator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guildmirror/internal/models"
)

// newScenario seeds a populated source guild "src" and a bare target
// guild "dst" that only carries its default role.
func newScenario() *fakeAPI {
	f := newFakeAPI()
	f.guilds["src"] = models.Guild{ID: "src", Name: "Origin"}
	f.guilds["dst"] = models.Guild{ID: "dst", Name: "Blank"}
	f.roles["src"] = []models.Role{{ID: "esrc", Name: models.EveryoneRoleName, Position: 0}}
	f.roles["dst"] = []models.Role{{ID: "edst", Name: models.EveryoneRoleName, Position: 0}}
	return f
}

func runToCompletion(t *testing.T, f *fakeAPI, sourceID, targetID string, opts Options) *Run {
	t.Helper()
	run := Start(context.Background(), f, sourceID, targetID, zap.NewNop(), opts)
	run.Wait()
	return run
}

func TestRunRefusesIdenticalSourceAndTarget(t *testing.T) {
	f := newScenario()

	run := runToCompletion(t, f, "src", "src", Options{})

	status := run.Status()
	require.True(t, status.Done)
	assert.Equal(t, OutcomeFatal, status.Outcome)
	assert.Equal(t, 0, f.callCount(), "validation must reject before touching the API")
}

func TestRunFailsWhenSourceGuildMissing(t *testing.T) {
	f := newScenario()

	run := runToCompletion(t, f, "ghost", "dst", Options{})

	status := run.Status()
	assert.Equal(t, OutcomeFatal, status.Outcome)
	assert.Contains(t, status.Message, "source guild unavailable")
}

func TestRolesCreatedInAscendingPositionOrder(t *testing.T) {
	f := newScenario()
	f.roles["src"] = []models.Role{
		{ID: "esrc", Name: models.EveryoneRoleName, Position: 0},
		{ID: "r3", Name: "Admin", Position: 3},
		{ID: "r1", Name: "Member", Position: 1},
		{ID: "r2", Name: "Mod", Position: 2},
	}

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	names := make([]string, 0, len(f.createdRoles))
	for _, rc := range f.createdRoles {
		names = append(names, rc.Name)
	}
	assert.Equal(t, []string{"Member", "Mod", "Admin"}, names)
}

func TestDefaultRoleIsMappedNeverCreated(t *testing.T) {
	f := newScenario()

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	assert.Empty(t, f.createdRoles)
	assert.Equal(t, "edst", run.roleIDs["esrc"], "source default role maps onto the target's own")

	report := run.Report()
	require.Len(t, report, 1)
	assert.Equal(t, KindRole, report[0].Kind)
	assert.Equal(t, EntitySkipped, report[0].Outcome)
}

func TestFullReplication(t *testing.T) {
	f := newScenario()
	f.roles["src"] = append(f.roles["src"],
		models.Role{ID: "mod", Name: "Mod", Permissions: "8", Color: 0xFF0000, Hoist: true, Position: 1})
	f.channels["src"] = []models.Channel{
		{ID: "cat1", Type: models.ChannelTypeCategory, Name: "General", Position: 0},
		{
			ID: "ch1", Type: models.ChannelTypeText, Name: "chat", Topic: "daily talk",
			Position: 0, ParentID: "cat1",
			PermissionOverwrites: []models.Overwrite{{ID: "mod", Type: models.OverwriteTypeRole, Allow: "1024"}},
		},
	}
	f.emojis["src"] = []models.Emoji{{ID: "e1", Name: "wave", Image: "data:image/png;base64,AAAA", Available: true}}
	f.stickers["src"] = []models.Sticker{{ID: "s1", Name: "hello", Tags: "hi", Image: "data:image/png;base64,BBBB"}}

	// Pre-existing target clutter that sanitation must clear.
	f.channels["dst"] = []models.Channel{{ID: "old1", Type: models.ChannelTypeText, Name: "stale"}}
	f.roles["dst"] = append(f.roles["dst"], models.Role{ID: "junk", Name: "Leftover", Position: 1})

	run := runToCompletion(t, f, "src", "dst", Options{})

	status := run.Status()
	require.Equal(t, OutcomeSuccess, status.Outcome)
	assert.Contains(t, status.Message, "Origin")
	assert.Contains(t, status.Message, "Blank")

	assert.Equal(t, []string{"old1"}, f.deletedChannels)
	assert.Equal(t, []string{"junk"}, f.deletedRoles)

	require.Len(t, f.createdRoles, 1)
	assert.Equal(t, "Mod", f.createdRoles[0].Name)
	assert.Equal(t, "8", f.createdRoles[0].Permissions)
	newModID := run.roleIDs["mod"]
	require.NotEmpty(t, newModID)

	require.Len(t, f.createdChannels, 2)
	category := f.createdChannels[0]
	assert.Equal(t, "General", category.Name)
	assert.Equal(t, models.ChannelTypeCategory, category.Type)

	chat := f.createdChannels[1]
	assert.Equal(t, "chat", chat.Name)
	assert.Equal(t, "daily talk", chat.Topic)
	assert.Equal(t, f.createdChannelIDs[0], chat.ParentID, "channel parent must point at the recreated category")
	require.Len(t, chat.PermissionOverwrites, 1)
	assert.Equal(t, newModID, chat.PermissionOverwrites[0].ID)
	assert.Equal(t, "1024", chat.PermissionOverwrites[0].Allow)

	require.Len(t, f.createdEmojis, 1)
	assert.Equal(t, "wave", f.createdEmojis[0].Name)
	require.Len(t, f.createdStickers, 1)
	assert.Equal(t, "data:image/png;base64,BBBB", f.createdStickers[0].File)
}

func TestUnmappedRoleOverwriteIsDropped(t *testing.T) {
	f := newScenario()
	f.roles["src"] = append(f.roles["src"],
		models.Role{ID: "ghost", Name: "Ghost", Position: 1})
	f.failRoleCreate["Ghost"] = errors.New("missing permissions")
	f.channels["src"] = []models.Channel{
		{
			ID: "ch1", Type: models.ChannelTypeText, Name: "chat",
			PermissionOverwrites: []models.Overwrite{
				{ID: "ghost", Type: models.OverwriteTypeRole, Allow: "1024"},
				{ID: "user42", Type: models.OverwriteTypeMember, Deny: "2048"},
			},
		},
	}

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	require.Len(t, f.createdChannels, 1)
	overwrites := f.createdChannels[0].PermissionOverwrites
	require.Len(t, overwrites, 1, "the overwrite for the role that never got created must be dropped")
	assert.Equal(t, "user42", overwrites[0].ID)
	assert.Equal(t, models.OverwriteTypeMember, overwrites[0].Type)
	assert.Equal(t, "2048", overwrites[0].Deny)
}

func TestChannelWithUnknownParentBecomesTopLevel(t *testing.T) {
	f := newScenario()
	f.channels["src"] = []models.Channel{
		{ID: "ch1", Type: models.ChannelTypeText, Name: "orphan", ParentID: "vanished"},
	}

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	require.Len(t, f.createdChannels, 1)
	assert.Empty(t, f.createdChannels[0].ParentID)
}

func TestVoiceChannelBitrateDefaults(t *testing.T) {
	f := newScenario()
	f.channels["src"] = []models.Channel{
		{ID: "v1", Type: models.ChannelTypeVoice, Name: "lounge"},
		{ID: "v2", Type: models.ChannelTypeVoice, Name: "radio", Bitrate: 96000, UserLimit: 10},
	}

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	require.Len(t, f.createdChannels, 2)
	assert.Equal(t, 64000, f.createdChannels[0].Bitrate)
	assert.Equal(t, 96000, f.createdChannels[1].Bitrate)
	assert.Equal(t, 10, f.createdChannels[1].UserLimit)
}

func TestEmojiFailureDoesNotAbortTheRun(t *testing.T) {
	f := newScenario()
	f.emojis["src"] = []models.Emoji{
		{ID: "e1", Name: "blocked", Image: "img", Available: true},
		{ID: "e2", Name: "fine", Image: "img", Available: true},
		{ID: "e3", Name: "managed", Available: false},
	}
	f.failEmojiCreate["blocked"] = errors.New("missing access")

	run := runToCompletion(t, f, "src", "dst", Options{})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	require.Len(t, f.createdEmojis, 1)
	assert.Equal(t, "fine", f.createdEmojis[0].Name)

	var failed, skipped []string
	for _, rep := range run.Report() {
		if rep.Kind != KindEmoji {
			continue
		}
		switch rep.Outcome {
		case EntityFailed:
			failed = append(failed, rep.SourceID)
		case EntitySkipped:
			skipped = append(skipped, rep.SourceID)
		}
	}
	assert.Equal(t, []string{"e1"}, failed)
	assert.Equal(t, []string{"e3"}, skipped)
}

func TestStrictModeTurnsEntityFailureFatal(t *testing.T) {
	f := newScenario()
	f.emojis["src"] = []models.Emoji{{ID: "e1", Name: "blocked", Image: "img", Available: true}}
	f.failEmojiCreate["blocked"] = errors.New("missing access")

	run := runToCompletion(t, f, "src", "dst", Options{Strict: true})

	status := run.Status()
	assert.Equal(t, OutcomeFatal, status.Outcome)
	assert.Contains(t, status.Message, "strict mode")
}

func TestRestoreRebuildsFromSnapshotWithoutSourceCalls(t *testing.T) {
	f := newFakeAPI()
	f.guilds["dst"] = models.Guild{ID: "dst", Name: "Blank"}
	f.roles["dst"] = []models.Role{{ID: "edst", Name: models.EveryoneRoleName, Position: 0}}

	snap := &models.Snapshot{
		Guild: models.Guild{ID: "src", Name: "Origin"},
		Roles: []models.Role{
			{ID: "esrc", Name: models.EveryoneRoleName, Position: 0},
			{ID: "mod", Name: "Mod", Position: 1},
		},
		Channels: []models.Channel{
			{ID: "cat1", Type: models.ChannelTypeCategory, Name: "General"},
			{ID: "ch1", Type: models.ChannelTypeText, Name: "chat", ParentID: "cat1"},
		},
	}

	run := runToCompletion(t, f, "src", "dst", Options{Snapshot: snap})

	status := run.Status()
	require.Equal(t, OutcomeSuccess, status.Outcome)
	assert.Contains(t, status.Message, "restored")

	for _, call := range f.calls {
		assert.False(t, strings.HasSuffix(call, ":src"),
			"restore must never read the snapshot's origin guild, saw %q", call)
	}

	require.Len(t, f.createdRoles, 1)
	assert.Equal(t, "Mod", f.createdRoles[0].Name)
	require.Len(t, f.createdChannels, 2)
	assert.Equal(t, f.createdChannelIDs[0], f.createdChannels[1].ParentID)
}

func TestRestoreOntoOriginGuildIsAllowed(t *testing.T) {
	f := newFakeAPI()
	f.guilds["dst"] = models.Guild{ID: "dst", Name: "Origin"}
	f.roles["dst"] = []models.Role{{ID: "edst", Name: models.EveryoneRoleName, Position: 0}}
	f.channels["dst"] = []models.Channel{{ID: "old1", Type: models.ChannelTypeText, Name: "stale"}}

	snap := &models.Snapshot{
		Guild:    models.Guild{ID: "dst", Name: "Origin"},
		Roles:    []models.Role{{ID: "edst", Name: models.EveryoneRoleName, Position: 0}},
		Channels: []models.Channel{{ID: "c1", Type: models.ChannelTypeText, Name: "chat"}},
	}

	run := runToCompletion(t, f, "dst", "dst", Options{Snapshot: snap})

	require.Equal(t, OutcomeSuccess, run.Status().Outcome)
	assert.Equal(t, []string{"old1"}, f.deletedChannels)
	require.Len(t, f.createdChannels, 1)
	assert.Equal(t, "chat", f.createdChannels[0].Name)
}

func TestCancelledRunEndsCancelled(t *testing.T) {
	f := newScenario()
	f.blockGuild = make(chan struct{})

	run := Start(context.Background(), f, "src", "dst", zap.NewNop(), Options{})
	run.Cancel()
	run.Wait()

	status := run.Status()
	require.True(t, status.Done)
	assert.Equal(t, OutcomeCancelled, status.Outcome)
	assert.Empty(t, f.createdRoles)
	assert.Empty(t, f.createdChannels)
}
