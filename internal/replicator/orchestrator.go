package replicator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"guildmirror/internal/models"
)

const defaultVoiceBitrate = 64000

// Options tunes a replication run.
type Options struct {
	// Strict escalates any single entity failure to a fatal outcome.
	// The default keeps the historical best-effort behavior: failures
	// are logged, reported, and the run carries on.
	Strict bool

	// Snapshot, when set, replaces the live extraction stage: the run
	// rebuilds the target from this capture instead of reading a source
	// guild. Restoring a backup onto the guild it was taken from is
	// allowed.
	Snapshot *models.Snapshot
}

// Run replicates one source guild's structure onto one target guild.
// It owns its API client, its identifier maps and its report; no state
// is shared between runs.
type Run struct {
	sourceID string
	targetID string
	api      GuildAPI
	log      *zap.Logger
	opts     Options

	cancel context.CancelFunc
	done   chan struct{}

	mu          sync.Mutex
	stage       Stage
	outcome     Outcome
	message     string
	finished    time.Time
	report      []EntityReport
	roleIDs     map[string]string
	categoryIDs map[string]string
}

// Start launches a replication run in its own goroutine and returns a
// handle immediately. The run honors ctx: cancellation is checked at
// every stage boundary and every per-entity step, and the transport's
// retry sleeps abort with it.
func Start(ctx context.Context, api GuildAPI, sourceID, targetID string, log *zap.Logger, opts Options) *Run {
	ctx, cancel := context.WithCancel(ctx)
	r := &Run{
		sourceID:    sourceID,
		targetID:    targetID,
		api:         api,
		log:         log.With(zap.String("source", sourceID), zap.String("target", targetID)),
		opts:        opts,
		cancel:      cancel,
		done:        make(chan struct{}),
		stage:       StagePending,
		outcome:     OutcomeRunning,
		roleIDs:     make(map[string]string),
		categoryIDs: make(map[string]string),
	}
	go r.run(ctx)
	return r
}

// Status reports the current stage and, once done, the terminal verdict.
func (r *Run) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Status{
		Stage:   r.stage,
		Done:    r.outcome != OutcomeRunning,
		Outcome: r.outcome,
		Message: r.message,
	}
}

// Report returns the per-entity records accumulated so far.
func (r *Run) Report() []EntityReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EntityReport, len(r.report))
	copy(out, r.report)
	return out
}

// Cancel stops the run at its next checkpoint. Already-created target
// resources are not rolled back.
func (r *Run) Cancel() {
	r.cancel()
}

// Wait blocks until the run has reached a terminal outcome.
func (r *Run) Wait() {
	<-r.done
}

func (r *Run) run(ctx context.Context) {
	defer close(r.done)
	defer r.cancel()
	defer r.api.Close()

	r.setStage(StageValidate)
	if r.opts.Snapshot == nil && r.sourceID == r.targetID {
		r.finish(OutcomeFatal, "source and target guild ids must differ")
		return
	}

	sourceName := ""
	if r.opts.Snapshot == nil {
		source, err := r.api.Guild(ctx, r.sourceID)
		if err != nil {
			r.fail(ctx, fmt.Errorf("source guild unavailable: %w", err))
			return
		}
		sourceName = source.Name
	} else {
		sourceName = r.opts.Snapshot.Guild.Name
	}
	target, err := r.api.Guild(ctx, r.targetID)
	if err != nil {
		r.fail(ctx, fmt.Errorf("target guild unavailable: %w", err))
		return
	}

	snap := r.opts.Snapshot
	if snap == nil {
		r.setStage(StageExtract)
		if snap, err = Extract(ctx, r.api, r.sourceID, r.log); err != nil {
			r.fail(ctx, err)
			return
		}
	}

	r.setStage(StageSanitize)
	if err := Sanitize(ctx, r.api, r.targetID, r.log); err != nil {
		r.fail(ctx, err)
		return
	}

	type stageFn struct {
		stage Stage
		fn    func(context.Context, *models.Snapshot) error
	}
	for _, s := range []stageFn{
		{StageRoles, r.recreateRoles},
		{StageCategories, r.recreateCategories},
		{StageChannels, r.recreateChannels},
		{StageEmojis, r.recreateEmojis},
		{StageStickers, r.recreateStickers},
	} {
		r.setStage(s.stage)
		if err := s.fn(ctx, snap); err != nil {
			r.fail(ctx, err)
			return
		}
	}

	r.setStage(StageDone)
	if r.opts.Snapshot != nil {
		r.finish(OutcomeSuccess, fmt.Sprintf("backup of %q restored onto %q", sourceName, target.Name))
		return
	}
	r.finish(OutcomeSuccess, fmt.Sprintf("guild %q copied to %q", sourceName, target.Name))
}

// recreateRoles rebuilds the role hierarchy in ascending position order
// (lower position first, matching creation-order placement on the
// target). The source @everyone is never created; it maps onto the
// target's own default role so overwrites referencing it survive.
func (r *Run) recreateRoles(ctx context.Context, snap *models.Snapshot) error {
	roles := make([]models.Role, len(snap.Roles))
	copy(roles, snap.Roles)
	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Position < roles[j].Position
	})

	everyoneID := ""
	for _, role := range roles {
		if err := ctx.Err(); err != nil {
			return err
		}

		if role.Name == models.EveryoneRoleName {
			if everyoneID == "" {
				targetRoles, err := r.api.Roles(ctx, r.targetID)
				if err != nil {
					if failErr := r.recordFailure(KindRole, role.ID, role.Name, err); failErr != nil {
						return failErr
					}
					continue
				}
				for _, tr := range targetRoles {
					if tr.Name == models.EveryoneRoleName {
						everyoneID = tr.ID
						break
					}
				}
			}
			if everyoneID != "" {
				r.mapRole(role.ID, everyoneID)
				r.record(EntityReport{Kind: KindRole, SourceID: role.ID, Name: role.Name, Outcome: EntitySkipped, Reason: "default role"})
			}
			continue
		}

		created, err := r.api.CreateRole(ctx, r.targetID, models.RoleCreate{
			Name:        role.Name,
			Permissions: role.Permissions,
			Color:       role.Color,
			Hoist:       role.Hoist,
			Mentionable: role.Mentionable,
		})
		if err != nil {
			if failErr := r.recordFailure(KindRole, role.ID, role.Name, err); failErr != nil {
				return failErr
			}
			continue
		}
		r.mapRole(role.ID, created.ID)
		r.record(EntityReport{Kind: KindRole, SourceID: role.ID, Name: role.Name, Outcome: EntityCreated})
		r.log.Info("role created", zap.String("name", role.Name))
	}
	return nil
}

func (r *Run) recreateCategories(ctx context.Context, snap *models.Snapshot) error {
	for _, ch := range snap.Channels {
		if !ch.IsCategory() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		created, err := r.api.CreateChannel(ctx, r.targetID, models.ChannelCreate{
			Name:                 ch.Name,
			Type:                 models.ChannelTypeCategory,
			Position:             ch.Position,
			PermissionOverwrites: r.remapOverwrites(ch.PermissionOverwrites),
		})
		if err != nil {
			if failErr := r.recordFailure(KindCategory, ch.ID, ch.Name, err); failErr != nil {
				return failErr
			}
			continue
		}
		r.mapCategory(ch.ID, created.ID)
		r.record(EntityReport{Kind: KindCategory, SourceID: ch.ID, Name: ch.Name, Outcome: EntityCreated})
		r.log.Info("category created", zap.String("name", ch.Name))
	}
	return nil
}

func (r *Run) recreateChannels(ctx context.Context, snap *models.Snapshot) error {
	for _, ch := range snap.Channels {
		if ch.IsCategory() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		payload := models.ChannelCreate{
			Name:                 ch.Name,
			Type:                 ch.Type,
			Topic:                ch.Topic,
			NSFW:                 ch.NSFW,
			RateLimitPerUser:     ch.RateLimitPerUser,
			Position:             ch.Position,
			PermissionOverwrites: r.remapOverwrites(ch.PermissionOverwrites),
		}
		// A parent that never made it into the map leaves the channel
		// top-level rather than pointing at a stale id.
		if ch.ParentID != "" {
			if mapped, ok := r.categoryIDs[ch.ParentID]; ok {
				payload.ParentID = mapped
			}
		}
		if ch.IsVoice() {
			payload.Bitrate = ch.Bitrate
			if payload.Bitrate == 0 {
				payload.Bitrate = defaultVoiceBitrate
			}
			payload.UserLimit = ch.UserLimit
		}

		if _, err := r.api.CreateChannel(ctx, r.targetID, payload); err != nil {
			if failErr := r.recordFailure(KindChannel, ch.ID, ch.Name, err); failErr != nil {
				return failErr
			}
			continue
		}
		r.record(EntityReport{Kind: KindChannel, SourceID: ch.ID, Name: ch.Name, Outcome: EntityCreated})
		r.log.Info("channel created", zap.String("name", ch.Name))
	}
	return nil
}

func (r *Run) recreateEmojis(ctx context.Context, snap *models.Snapshot) error {
	for _, emoji := range snap.Emojis {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !emoji.Available || emoji.Image == "" {
			r.record(EntityReport{Kind: KindEmoji, SourceID: emoji.ID, Name: emoji.Name, Outcome: EntitySkipped, Reason: "no usable image payload"})
			continue
		}

		_, err := r.api.CreateEmoji(ctx, r.targetID, models.EmojiCreate{
			Name:  emoji.Name,
			Image: emoji.Image,
			Roles: []string{},
		})
		if err != nil {
			if failErr := r.recordFailure(KindEmoji, emoji.ID, emoji.Name, err); failErr != nil {
				return failErr
			}
			continue
		}
		r.record(EntityReport{Kind: KindEmoji, SourceID: emoji.ID, Name: emoji.Name, Outcome: EntityCreated})
	}
	return nil
}

func (r *Run) recreateStickers(ctx context.Context, snap *models.Snapshot) error {
	for _, sticker := range snap.Stickers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if sticker.Image == "" {
			r.record(EntityReport{Kind: KindSticker, SourceID: sticker.ID, Name: sticker.Name, Outcome: EntitySkipped, Reason: "no image payload"})
			continue
		}

		_, err := r.api.CreateSticker(ctx, r.targetID, models.StickerCreate{
			Name:        sticker.Name,
			Description: sticker.Description,
			Tags:        sticker.Tags,
			File:        sticker.Image,
		})
		if err != nil {
			if failErr := r.recordFailure(KindSticker, sticker.ID, sticker.Name, err); failErr != nil {
				return failErr
			}
			continue
		}
		r.record(EntityReport{Kind: KindSticker, SourceID: sticker.ID, Name: sticker.Name, Outcome: EntityCreated})
	}
	return nil
}

// remapOverwrites translates role-scoped overwrites through the role id
// map, dropping any whose source role never got created. Member-scoped
// overwrites pass through unchanged.
func (r *Run) remapOverwrites(overwrites []models.Overwrite) []models.Overwrite {
	out := make([]models.Overwrite, 0, len(overwrites))
	for _, ow := range overwrites {
		switch ow.Type {
		case models.OverwriteTypeRole:
			if mapped, ok := r.roleIDs[ow.ID]; ok {
				out = append(out, models.Overwrite{
					ID:    mapped,
					Type:  ow.Type,
					Allow: ow.Allow,
					Deny:  ow.Deny,
				})
			}
		case models.OverwriteTypeMember:
			out = append(out, ow)
		}
	}
	return out
}

func (r *Run) mapRole(sourceID, targetID string) {
	r.roleIDs[sourceID] = targetID
}

func (r *Run) mapCategory(sourceID, targetID string) {
	r.categoryIDs[sourceID] = targetID
}

func (r *Run) setStage(stage Stage) {
	r.mu.Lock()
	r.stage = stage
	r.mu.Unlock()
	r.log.Info("stage entered", zap.String("stage", string(stage)))
}

func (r *Run) record(rep EntityReport) {
	r.mu.Lock()
	r.report = append(r.report, rep)
	r.mu.Unlock()
}

// recordFailure logs and reports one failed entity. It returns a
// non-nil error only when strict mode turns the failure fatal, or when
// the underlying cause was cancellation.
func (r *Run) recordFailure(kind, sourceID, name string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	r.record(EntityReport{Kind: kind, SourceID: sourceID, Name: name, Outcome: EntityFailed, Reason: err.Error()})
	r.log.Warn("entity recreation failed",
		zap.String("kind", kind),
		zap.String("name", name),
		zap.Error(err))
	if r.opts.Strict {
		return fmt.Errorf("strict mode: %s %q: %w", kind, name, err)
	}
	return nil
}

func (r *Run) fail(ctx context.Context, err error) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.finish(OutcomeCancelled, "run cancelled")
		return
	}
	r.finish(OutcomeFatal, err.Error())
}

// finishedAt reports whether the run is done and, if so, when it ended.
func (r *Run) finishedAt() (bool, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome != OutcomeRunning, r.finished
}

func (r *Run) finish(outcome Outcome, message string) {
	r.mu.Lock()
	r.outcome = outcome
	r.message = message
	r.finished = time.Now()
	r.mu.Unlock()

	switch outcome {
	case OutcomeSuccess:
		r.log.Info("run finished", zap.String("message", message))
	case OutcomeCancelled:
		r.log.Warn("run cancelled")
	default:
		r.log.Error("run failed", zap.String("reason", message))
	}
}
