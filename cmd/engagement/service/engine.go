package service

// Engine 对外暴露的全部服务，共享同一组依赖
type Engine struct {
	Ledger     *Ledger
	Aggregator *Aggregator
	Composer   *Composer
	Comments   *CommentService
	Contents   *ContentService
	Users      *UserService
}

func NewEngine(d *Deps) *Engine {
	d.fill()
	ledger := NewLedger(d)
	agg := NewAggregator(d)
	comments := NewCommentService(d)
	users := NewUserService(d, ledger, agg)
	agg.history = users.RecordWatch
	return &Engine{
		Ledger:     ledger,
		Aggregator: agg,
		Composer:   NewComposer(d, agg, ledger),
		Comments:   comments,
		Contents:   NewContentService(d, agg, comments),
		Users:      users,
	}
}
