package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"streamhub.com/cmd/engagement/dal/db"
	"streamhub.com/cmd/model"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
)

type fixture struct {
	d *Deps
	e *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	d := NewDeps(gdb)
	d.BranchTimeout = 5 * time.Second
	return &fixture{d: d, e: NewEngine(d)}
}

func (f *fixture) user(t *testing.T, id int64, name string) *model.User {
	t.Helper()
	u := &model.User{ID: id, UserName: name, FullName: "Full " + name, Email: name + "@example.com"}
	require.NoError(t, f.d.Users.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) content(t *testing.T, kind model.Kind, id, owner int64, public bool, at time.Time) *model.Content {
	t.Helper()
	c := &model.Content{
		Kind:      kind,
		ID:        id,
		OwnerID:   owner,
		IsPublic:  public,
		CreatedAt: at,
		MediaUrl:  "media/" + string(kind),
		Title:     "title",
		Caption:   "caption",
		Body:      "body",
	}
	require.NoError(t, f.d.Contents[kind].Create(context.Background(), c))
	return c
}

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func clipRef(id int64) model.Ref { return model.Ref{Kind: model.KindClip, ID: id} }

type memCache struct {
	mu   sync.Mutex
	data map[string]int64
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string]int64{}}
}

func (c *memCache) Get(_ context.Context, key string) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.data[key]
	return n, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, n int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = n
	c.sets++
	return nil
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*mq.EngagementEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *mq.EngagementEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingAssets struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (a *recordingAssets) DeleteByToken(_ context.Context, token string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.tokens = append(a.tokens, token)
	return a.err
}

// failingStore 模拟某种内容的存储不可用
type failingStore struct {
	ContentStore
	err error
}

func (s failingStore) ListByOwner(context.Context, int64, bool, int, int) ([]*model.Content, int64, error) {
	return nil, 0, s.err
}

func (s failingStore) OwnerStats(context.Context, int64) (db.OwnerStats, error) {
	return db.OwnerStats{}, s.err
}

func (s failingStore) FetchByIDs(context.Context, []int64) (map[int64]*model.Content, error) {
	return nil, s.err
}

// slowStore 一直阻塞到 ctx 结束
type slowStore struct {
	ContentStore
}

func (s slowStore) ListByOwner(ctx context.Context, _ int64, _ bool, _, _ int) ([]*model.Content, int64, error) {
	<-ctx.Done()
	return nil, 0, ctx.Err()
}

func (s slowStore) OwnerStats(ctx context.Context, _ int64) (db.OwnerStats, error) {
	<-ctx.Done()
	return db.OwnerStats{}, ctx.Err()
}

// racingLikes 模拟并发的 toggle 抢先插入：前 conflicts 次 CreateLike 返回冲突，
// insert 为 true 时冲突前先把边写进去
type racingLikes struct {
	LikeStore
	insert    bool
	conflicts int
	calls     int
}

func (s *racingLikes) CreateLike(ctx context.Context, edge *model.LikeEdge) error {
	s.calls++
	if s.calls > s.conflicts {
		return s.LikeStore.CreateLike(ctx, edge)
	}
	if s.insert {
		if err := s.LikeStore.CreateLike(ctx, edge); err != nil {
			return err
		}
	}
	return errors.Wrap(errno.ConflictErr, "like already exists")
}
