package service

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/validator"
)

type NewUser struct {
	UserName       string `json:"user_name" validate:"required,alphanum,min=3,max=32"`
	FullName       string `json:"full_name" validate:"notblank,max=128"`
	Email          string `json:"email" validate:"required,email,max=255"`
	AvatarUrl      string `json:"avatar_url" validate:"max=512"`
	CredentialHash string `json:"credential_hash" validate:"max=255"`
}

// ProfilePatch nil 表示不修改
type ProfilePatch struct {
	FullName  *string `json:"full_name"`
	AvatarUrl *string `json:"avatar_url" validate:"omitempty,max=512"`
	Bio       *string `json:"bio"`
}

type UserService struct {
	d      *Deps
	ledger *Ledger
	agg    *Aggregator
}

func NewUserService(d *Deps, ledger *Ledger, agg *Aggregator) *UserService {
	d.fill()
	return &UserService{d: d, ledger: ledger, agg: agg}
}

// CreateUser 用户名不区分大小写且唯一
func (s *UserService) CreateUser(ctx context.Context, req *NewUser) (*model.User, error) {
	if err := validator.Struct(req); err != nil {
		return nil, err
	}
	user := &model.User{
		ID:             s.d.IDs(),
		UserName:       strings.ToLower(req.UserName),
		FullName:       strings.TrimSpace(req.FullName),
		Email:          strings.ToLower(req.Email),
		AvatarUrl:      req.AvatarUrl,
		CredentialHash: req.CredentialHash,
	}
	if err := s.d.Users.CreateUser(ctx, user); err != nil {
		return nil, storeErr(err)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor int64, patch *ProfilePatch) (*model.User, error) {
	if err := validator.CheckID(actor, "user_id"); err != nil {
		return nil, err
	}
	if err := validator.Struct(patch); err != nil {
		return nil, err
	}
	fields := make(map[string]interface{})
	if patch.FullName != nil {
		name, err := validator.CheckText(*patch.FullName, "full_name", 128)
		if err != nil {
			return nil, err
		}
		fields["full_name"] = name
	}
	if patch.AvatarUrl != nil {
		fields["avatar_url"] = strings.TrimSpace(*patch.AvatarUrl)
	}
	if patch.Bio != nil {
		bio := strings.TrimSpace(*patch.Bio)
		if len([]rune(bio)) > constants.BioMaxRunes {
			return nil, errno.InvalidInputErr.WithMessagef("bio must be at most %d characters", constants.BioMaxRunes)
		}
		fields["bio"] = bio
	}
	if err := s.d.Users.UpdateProfile(ctx, actor, fields); err != nil {
		return nil, storeErr(err)
	}
	user, err := s.d.Users.GetUser(ctx, actor)
	return user, storeErr(err)
}

// GetChannelProfile 按用户名查找频道主页
func (s *UserService) GetChannelProfile(ctx context.Context, handle string, viewer int64) (*ChannelProfile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, errno.InvalidInputErr.WithMessage("user name is required")
	}
	user, err := s.d.Users.GetUserByName(ctx, handle)
	if err != nil {
		return nil, storeErr(err)
	}
	profile := &ChannelProfile{OwnerSummary: user.Summary(), Bio: user.Bio, CreatedAt: user.CreatedAt}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.Followers, err = s.ledger.CountFollowers(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		profile.Following, err = s.ledger.CountFollowing(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		profile.ViewerFollows, err = s.ledger.IsFollowing(gctx, viewer, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *UserService) ListFollowers(ctx context.Context, profile, viewer int64, pageNum, pageSize int) (*Page[*UserView], error) {
	return s.listEdges(ctx, profile, viewer, pageNum, pageSize, s.d.Follows.ListFollowers)
}

func (s *UserService) ListFollowing(ctx context.Context, follower, viewer int64, pageNum, pageSize int) (*Page[*UserView], error) {
	return s.listEdges(ctx, follower, viewer, pageNum, pageSize, s.d.Follows.ListFollowing)
}

func (s *UserService) listEdges(ctx context.Context, userId, viewer int64, pageNum, pageSize int,
	list func(ctx context.Context, id int64, offset, limit int) ([]int64, int64, error)) (*Page[*UserView], error) {
	if err := validator.CheckID(userId, "user_id"); err != nil {
		return nil, err
	}
	if _, err := s.d.Users.GetUser(ctx, userId); err != nil {
		return nil, storeErr(err)
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	ids, total, err := list(ctx, userId, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}

	var (
		users   map[int64]*model.User
		follows map[int64]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		users, err = s.d.Users.GetUsers(gctx, ids)
		return err
	})
	g.Go(func() (err error) {
		follows, err = s.d.Follows.FollowingSet(gctx, viewer, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err)
	}

	items := make([]*UserView, 0, len(ids))
	for _, id := range ids {
		v := &UserView{OwnerSummary: model.OwnerSummary{ID: id}, ViewerFollows: follows[id]}
		if u, ok := users[id]; ok {
			v.OwnerSummary = u.Summary()
		}
		items = append(items, v)
	}
	return &Page[*UserView]{Items: items, Total: total, PageNum: num, PageSize: limit}, nil
}

// RecordWatch 重复观看同一视频只刷新时间
func (s *UserService) RecordWatch(ctx context.Context, viewer, clipId int64) error {
	return storeErr(s.d.Users.RecordWatch(ctx, &model.WatchHistory{
		ID:        s.d.IDs(),
		UserID:    viewer,
		ClipID:    clipId,
		WatchedAt: time.Now().UTC(),
	}))
}

// ListWatchHistory 最近观看的在前，已删除或已不可见的视频被跳过
func (s *UserService) ListWatchHistory(ctx context.Context, viewer int64, pageNum, pageSize int) (*Page[*Projection], error) {
	if err := validator.CheckID(viewer, "user_id"); err != nil {
		return nil, err
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	entries, total, err := s.d.Users.ListWatchHistory(ctx, viewer, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ClipID)
	}
	contents, err := s.agg.resolveVisible(ctx, model.KindClip, ids, viewer)
	if err != nil {
		return nil, err
	}
	items, err := s.agg.enrich(ctx, contents, viewer)
	if err != nil {
		return nil, err
	}
	return &Page[*Projection]{Items: items, Total: total, PageNum: num, PageSize: limit}, nil
}
