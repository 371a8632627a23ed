package service

import (
	"context"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"streamhub.com/cmd/model"
	"streamhub.com/pkg/constants"
	"streamhub.com/pkg/errno"
	"streamhub.com/pkg/mq"
	"streamhub.com/pkg/validator"
)

// CommentService 评论的唯一写入方。删除权限属于评论作者和被评论内容的所有者。
type CommentService struct {
	d *Deps
}

func NewCommentService(d *Deps) *CommentService {
	d.fill()
	return &CommentService{d: d}
}

// joinComments 补齐作者、点赞数和访问者是否点赞
func joinComments(ctx context.Context, d *Deps, comments []*model.Comment, viewer int64) ([]*CommentView, error) {
	views := make([]*CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}
	ids := make([]int64, 0, len(comments))
	authorIds := make([]int64, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
		authorIds = append(authorIds, c.UserID)
	}

	var (
		authors map[int64]*model.User
		likes   map[int64]int64
		liked   map[int64]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		authors, err = d.Users.GetUsers(gctx, authorIds)
		return err
	})
	g.Go(func() (err error) {
		likes, err = d.Likes.CountLikesBatch(gctx, model.KindComment, ids)
		return err
	})
	g.Go(func() (err error) {
		liked, err = d.Likes.LikedSet(gctx, viewer, model.KindComment, ids)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, storeErr(err)
	}

	for _, c := range comments {
		v := newCommentView(c)
		if u, ok := authors[c.UserID]; ok {
			v.Author = u.Summary()
		}
		v.LikeCount = likes[c.ID]
		v.ViewerHasLiked = liked[c.ID]
		views = append(views, v)
	}
	return views, nil
}

func (s *CommentService) view(ctx context.Context, c *model.Comment, viewer int64) (*CommentView, error) {
	views, err := joinComments(ctx, s.d, []*model.Comment{c}, viewer)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// AddComment 目标必须存在且对作者可见
func (s *CommentService) AddComment(ctx context.Context, author int64, target model.Ref, body string) (*CommentView, error) {
	if err := validator.CheckID(author, "user_id"); err != nil {
		return nil, err
	}
	if err := validator.CheckRef(target, false); err != nil {
		return nil, err
	}
	body, err := validator.CheckText(body, "content", constants.CommentMaxRunes)
	if err != nil {
		return nil, err
	}
	if _, err := s.d.fetchVisible(ctx, target, author); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ID:         s.d.IDs(),
		UserID:     author,
		TargetKind: target.Kind,
		TargetID:   target.ID,
		Content:    body,
	}
	if err := s.d.Comments.CreateComment(ctx, comment); err != nil {
		return nil, storeErr(err)
	}
	s.d.publish(ctx, mq.EventCommentCreate, author, model.Ref{Kind: model.KindComment, ID: comment.ID})
	return s.view(ctx, comment, author)
}

// UpdateComment 只有作者可以修改
func (s *CommentService) UpdateComment(ctx context.Context, actor, commentId int64, body string) (*CommentView, error) {
	if err := validator.CheckID(actor, "user_id"); err != nil {
		return nil, err
	}
	if err := validator.CheckID(commentId, "comment_id"); err != nil {
		return nil, err
	}
	body, err := validator.CheckText(body, "content", constants.CommentMaxRunes)
	if err != nil {
		return nil, err
	}
	comment, err := s.d.Comments.GetComment(ctx, commentId)
	if err != nil {
		return nil, storeErr(err)
	}
	if comment.UserID != actor {
		return nil, errno.ForbiddenErr.WithMessage("only the author can edit a comment")
	}
	if err := s.d.Comments.UpdateComment(ctx, commentId, body); err != nil {
		return nil, storeErr(err)
	}
	comment.Content = body
	comment.UpdatedAt = time.Now().UTC()
	s.d.publish(ctx, mq.EventCommentUpdate, actor, model.Ref{Kind: model.KindComment, ID: commentId})
	return s.view(ctx, comment, actor)
}

// DeleteComment 作者或被评论内容的所有者可以删除；内容已不存在时只有作者可以删除
func (s *CommentService) DeleteComment(ctx context.Context, actor, commentId int64) error {
	if err := validator.CheckID(actor, "user_id"); err != nil {
		return err
	}
	if err := validator.CheckID(commentId, "comment_id"); err != nil {
		return err
	}
	comment, err := s.d.Comments.GetComment(ctx, commentId)
	if err != nil {
		return storeErr(err)
	}
	if comment.UserID != actor {
		owner, err := s.targetOwner(ctx, comment.Target())
		if err != nil {
			return err
		}
		if owner != actor {
			return errno.ForbiddenErr.WithMessage("only the author or the content owner can delete a comment")
		}
	}
	if _, err := s.d.Comments.DeleteComment(ctx, commentId); err != nil {
		return storeErr(err)
	}
	s.d.publish(ctx, mq.EventCommentDelete, actor, model.Ref{Kind: model.KindComment, ID: commentId})
	return nil
}

// targetOwner 返回 0 表示内容已被删除
func (s *CommentService) targetOwner(ctx context.Context, target model.Ref) (int64, error) {
	store, err := s.d.store(target.Kind)
	if err != nil {
		return 0, err
	}
	c, err := store.FetchByID(ctx, target.ID)
	if errors.Is(err, errno.NotFoundErr) {
		return 0, nil
	}
	if err != nil {
		return 0, storeErr(err)
	}
	return c.OwnerID, nil
}

// ListComments 可见性与所属内容一致
func (s *CommentService) ListComments(ctx context.Context, target model.Ref, viewer int64, pageNum, pageSize int) (*Page[*CommentView], error) {
	defer observe("list_comments", time.Now())
	if err := validator.CheckRef(target, false); err != nil {
		return nil, err
	}
	if _, err := s.d.fetchVisible(ctx, target, viewer); err != nil {
		return nil, err
	}
	offset, limit, num := normalizePage(pageNum, pageSize)
	comments, total, err := s.d.Comments.ListComments(ctx, target, offset, limit)
	if err != nil {
		return nil, storeErr(err)
	}
	views, err := joinComments(ctx, s.d, comments, viewer)
	if err != nil {
		return nil, err
	}
	return &Page[*CommentView]{Items: views, Total: total, PageNum: num, PageSize: limit}, nil
}

// PurgeForContent 内容删除后清理其下的评论
func (s *CommentService) PurgeForContent(ctx context.Context, target model.Ref) {
	n, err := s.d.Comments.PurgeTarget(ctx, target)
	if err != nil {
		hlog.CtxWarnf(ctx, "purge comments of %s failed: %v", target, err)
		return
	}
	hlog.CtxInfof(ctx, "purged %d comments of %s", n, target)
}
