package users

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/dalemusser/instafram/internal/app/store/users"
	"github.com/dalemusser/instafram/internal/app/system/cache"
	"github.com/dalemusser/instafram/internal/app/system/faults"
	"github.com/dalemusser/instafram/internal/app/system/projection"
)

// ToggleFollow flips the follow relationship from userID to targetID.
//
// The denormalized graph stores the edge on both documents, so a toggle
// is two independent single-document writes, issued concurrently and
// both awaited. The store has no multi-document transaction; if exactly
// one write fails, the failed side is retried a bounded number of times
// and then the operation is reported as Inconsistent — an integrity
// violation needing repair, logged distinctly from ordinary failures.
// (A replica-set deployment could collapse this failure mode entirely
// by running both writes in one transaction.)
//
// Both $addToSet and $pull are idempotent, so calling the toggle twice
// returns the pair to its prior relationship state, and an unfollow
// with no existing edge is a no-op rather than an error.
func (s *Service) ToggleFollow(ctx context.Context, userID, targetID primitive.ObjectID) (projection.PublicUser, error) {
	if userID == targetID {
		return projection.PublicUser{}, faults.Conflict("cannot follow yourself")
	}

	actor, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return projection.PublicUser{}, err
	}
	target, err := s.store.GetByID(ctx, targetID)
	if err != nil {
		if faults.IsKind(err, faults.KindNotFound) {
			return projection.PublicUser{}, faults.NotFound("follow target does not exist")
		}
		return projection.PublicUser{}, err
	}

	// Once issued, the pair runs to completion even if the request is
	// cancelled; a half-applied toggle is worse than a slow one.
	wctx := context.WithoutCancel(ctx)

	var actorWrite, targetWrite func(context.Context) error
	if actor.Follows(targetID) {
		actorWrite = func(c context.Context) error { return s.store.RemoveEdge(c, userID, userstore.EdgeFollowing, targetID) }
		targetWrite = func(c context.Context) error { return s.store.RemoveEdge(c, targetID, userstore.EdgeFollowers, userID) }
	} else {
		actorWrite = func(c context.Context) error { return s.store.AddEdge(c, userID, userstore.EdgeFollowing, targetID) }
		targetWrite = func(c context.Context) error { return s.store.AddEdge(c, targetID, userstore.EdgeFollowers, userID) }
	}

	actorErrCh := make(chan error, 1)
	go func() { actorErrCh <- actorWrite(wctx) }()
	targetErr := targetWrite(wctx)
	actorErr := <-actorErrCh

	if err := s.settleGraphPair(wctx, userID, targetID, actorErr, targetErr, actorWrite, targetWrite); err != nil {
		return projection.PublicUser{}, err
	}

	refreshed, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return projection.PublicUser{}, err
	}

	pub := projection.Project(projection.ProfileFields, refreshed)
	s.cache.Invalidate(ctx,
		cache.UserKey(actor.Alias),
		cache.UserKey(targetID.Hex()),
		cache.UserKey(target.Alias),
	)
	s.populate(ctx, cache.UserKey(userID.Hex()), pub)

	return pub, nil
}

// settleGraphPair resolves the outcome of the two symmetric writes.
// Both failed: the graph is still symmetric, plain upstream failure.
// One failed: the symmetry invariant is broken until the retries land.
func (s *Service) settleGraphPair(ctx context.Context, userID, targetID primitive.ObjectID,
	actorErr, targetErr error, actorWrite, targetWrite func(context.Context) error) error {

	if actorErr == nil && targetErr == nil {
		return nil
	}
	if actorErr != nil && targetErr != nil {
		return faults.Upstream("follow toggle failed", fmt.Errorf("actor: %v; target: %w", actorErr, targetErr))
	}

	failed := actorWrite
	failedErr := actorErr
	side := "actor"
	if targetErr != nil {
		failed = targetWrite
		failedErr = targetErr
		side = "target"
	}

	for attempt := 1; attempt <= s.opts.FollowRetryAttempts; attempt++ {
		time.Sleep(time.Duration(attempt) * 50 * time.Millisecond)
		if err := failed(ctx); err == nil {
			s.log.Warn("follow write recovered after retry",
				zap.String("side", side),
				zap.Int("attempt", attempt),
				zap.String("user_id", userID.Hex()),
				zap.String("target_id", targetID.Hex()))
			return nil
		} else {
			failedErr = err
		}
	}

	// One edge landed, its mirror did not: the follower/following sets
	// of this pair now disagree and need repair.
	s.log.Error("follow graph left inconsistent",
		zap.String("integrity", "follow-graph"),
		zap.String("side", side),
		zap.String("user_id", userID.Hex()),
		zap.String("target_id", targetID.Hex()),
		zap.Int("retries", s.opts.FollowRetryAttempts),
		zap.Error(failedErr))
	return faults.Inconsistent("follow graph writes diverged", failedErr)
}
