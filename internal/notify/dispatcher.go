package notify

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/d60-Lab/groupfeed/internal/model"
	"github.com/d60-Lab/groupfeed/pkg/logger"
)

var tracer = otel.Tracer("github.com/d60-Lab/groupfeed/internal/notify")

// UserStore is the part of the user repository the dispatcher needs.
type UserStore interface {
	Get(ctx context.Context, id string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
	ListAll(ctx context.Context) ([]*model.User, error)
	RemovePushSubscriptions(ctx context.Context, userID string, endpoints []string) (int, error)
}

// MemberStore resolves explicit group members.
type MemberStore interface {
	ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

// Options configures a Dispatcher.
type Options struct {
	AppName string
	BaseURL string
	// SkipUsername is never notified by group or global fan-out (system account).
	SkipUsername string
}

// Dispatcher fans a message out to users over every enabled channel.
// Failures are logged and never returned: delivery is best effort.
type Dispatcher struct {
	users   UserStore
	members MemberStore
	push    PushSender
	mail    Mailer
	opts    Options
}

// NewDispatcher builds a dispatcher. push or mail may be nil to disable a channel.
func NewDispatcher(users UserStore, members MemberStore, push PushSender, mail Mailer, opts Options) *Dispatcher {
	if opts.AppName == "" {
		opts.AppName = "Groupfeed"
	}
	return &Dispatcher{users: users, members: members, push: push, mail: mail, opts: opts}
}

// Report summarises one fan-out.
type Report struct {
	Recipients     int
	PushAttempted  int
	PushDelivered  int
	PushFailed     int
	PushPruned     int
	EmailAttempted int
	EmailDelivered int
	EmailFailed    int
}

func (r *Report) add(o Report) {
	r.Recipients += o.Recipients
	r.PushAttempted += o.PushAttempted
	r.PushDelivered += o.PushDelivered
	r.PushFailed += o.PushFailed
	r.PushPruned += o.PushPruned
	r.EmailAttempted += o.EmailAttempted
	r.EmailDelivered += o.EmailDelivered
	r.EmailFailed += o.EmailFailed
}

// SendToUser delivers msg to every push subscription of u and, when opted in, by email.
// Push and email run concurrently and do not affect each other. Subscriptions the push
// service reports as gone are removed from the user afterwards.
func (d *Dispatcher) SendToUser(ctx context.Context, u *model.User, msg Message) Report {
	rep := Report{Recipients: 1}
	var (
		wg       sync.WaitGroup
		pushRep  Report
		emailRep Report
	)
	if d.push != nil && len(u.PushSubscriptions) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pushRep = d.sendPush(ctx, u, msg)
		}()
	}
	if d.mail != nil && u.WantsEmail() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			emailRep = d.sendEmail(ctx, u, msg)
		}()
	}
	wg.Wait()
	rep.add(pushRep)
	rep.add(emailRep)
	return rep
}

// SendToUserID loads the user first; an unknown id is logged and skipped.
func (d *Dispatcher) SendToUserID(ctx context.Context, userID string, msg Message) Report {
	u, err := d.users.Get(ctx, userID)
	if err != nil {
		logger.Warn("notify: recipient not found", zap.String("user", userID), zap.Error(err))
		return Report{}
	}
	return d.SendToUser(ctx, u, msg)
}

// SendToUsers fans out to the given users concurrently and waits for every send.
func (d *Dispatcher) SendToUsers(ctx context.Context, userIDs []string, msg Message, exclude ...string) Report {
	users, err := d.users.ListByIDs(ctx, userIDs)
	if err != nil {
		logger.Error("notify: load recipients", zap.Error(err))
		return Report{}
	}
	return d.fanOut(ctx, d.filter(users, exclude), msg)
}

// SendToGroup notifies the explicit members of a group. Admins without a
// membership row are not included.
func (d *Dispatcher) SendToGroup(ctx context.Context, groupID string, msg Message, exclude ...string) Report {
	ctx, span := tracer.Start(ctx, "notify.SendToGroup", trace.WithAttributes(attribute.String("group.id", groupID)))
	defer span.End()

	ids, err := d.members.ListMemberIDs(ctx, groupID)
	if err != nil {
		logger.Error("notify: load group members", zap.String("group", groupID), zap.Error(err))
		return Report{}
	}
	users, err := d.users.ListByIDs(ctx, ids)
	if err != nil {
		logger.Error("notify: load group users", zap.String("group", groupID), zap.Error(err))
		return Report{}
	}
	rep := d.fanOut(ctx, d.filter(users, exclude), msg)
	span.SetAttributes(attribute.Int("notify.recipients", rep.Recipients))
	logger.Info("notify: group fan-out done",
		zap.String("group", groupID),
		zap.Int("recipients", rep.Recipients),
		zap.Int("push_failed", rep.PushFailed),
		zap.Int("push_pruned", rep.PushPruned),
		zap.Int("email_failed", rep.EmailFailed))
	return rep
}

// SendToAll notifies every user account.
func (d *Dispatcher) SendToAll(ctx context.Context, msg Message, exclude ...string) Report {
	ctx, span := tracer.Start(ctx, "notify.SendToAll")
	defer span.End()

	users, err := d.users.ListAll(ctx)
	if err != nil {
		logger.Error("notify: load all users", zap.Error(err))
		return Report{}
	}
	return d.fanOut(ctx, d.filter(users, exclude), msg)
}

// fanOut waits for every recipient regardless of individual outcome.
func (d *Dispatcher) fanOut(ctx context.Context, users []*model.User, msg Message) Report {
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		rep Report
	)
	for _, u := range users {
		wg.Add(1)
		go func(u *model.User) {
			defer wg.Done()
			r := d.SendToUser(ctx, u, msg)
			mu.Lock()
			rep.add(r)
			mu.Unlock()
		}(u)
	}
	wg.Wait()
	return rep
}

func (d *Dispatcher) filter(users []*model.User, exclude []string) []*model.User {
	skip := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		skip[id] = struct{}{}
	}
	out := make([]*model.User, 0, len(users))
	for _, u := range users {
		if _, ok := skip[u.ID]; ok {
			continue
		}
		if d.opts.SkipUsername != "" && strings.EqualFold(u.Username, d.opts.SkipUsername) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (d *Dispatcher) sendPush(ctx context.Context, u *model.User, msg Message) Report {
	payload, err := msg.pushPayload()
	if err != nil {
		logger.Error("notify: encode push payload", zap.Error(err))
		return Report{}
	}

	subs := append([]model.PushSubscription(nil), u.PushSubscriptions...)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		rep  Report
		gone []string
	)
	for _, sub := range subs {
		wg.Add(1)
		go func(sub model.PushSubscription) {
			defer wg.Done()
			err := d.push.Send(ctx, sub, payload)
			mu.Lock()
			defer mu.Unlock()
			rep.PushAttempted++
			switch {
			case err == nil:
				rep.PushDelivered++
			case IsGone(err):
				rep.PushFailed++
				gone = append(gone, sub.Endpoint)
			default:
				rep.PushFailed++
				logger.Warn("notify: push failed", zap.String("user", u.ID), zap.Error(err))
			}
		}(sub)
	}
	wg.Wait()

	if len(gone) > 0 {
		removed, err := d.users.RemovePushSubscriptions(ctx, u.ID, gone)
		if err != nil {
			logger.Error("notify: prune stale subscriptions", zap.String("user", u.ID), zap.Error(err))
		} else {
			rep.PushPruned = removed
			logger.Info("notify: removed stale push subscriptions", zap.String("user", u.Username), zap.Int("count", removed))
		}
	}
	return rep
}

func (d *Dispatcher) sendEmail(ctx context.Context, u *model.User, msg Message) Report {
	rep := Report{EmailAttempted: 1}
	env, err := renderEmail(d.opts.AppName, d.opts.BaseURL, u.Email, u.Username, msg)
	if err == nil {
		err = d.mail.Send(ctx, env)
	}
	if err != nil {
		rep.EmailFailed = 1
		logger.Warn("notify: email failed", zap.String("user", u.ID), zap.Error(err))
		return rep
	}
	rep.EmailDelivered = 1
	return rep
}
