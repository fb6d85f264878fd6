package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	v1 "github.com/nitinprakash96/ganeti-webmgr/api/v1"
	"github.com/nitinprakash96/ganeti-webmgr/internal/model"
	"github.com/nitinprakash96/ganeti-webmgr/internal/repository"
	"github.com/nitinprakash96/ganeti-webmgr/pkg/ganeti"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// DispatchRequest is one user action aimed at a node or an instance of a cluster.
type DispatchRequest struct {
	UserId      string
	ClusterSlug string
	Kind        string // model.TargetInstance or model.TargetNode
	Target      string
	Action      string
	Params      map[string]interface{}
}

// JobDispatcher turns authorized actions into cluster jobs and tracks them.
// State only moves when a caller polls; nothing runs in the background.
type JobDispatcher interface {
	Submit(ctx context.Context, req *DispatchRequest) (*v1.JobActionData, error)
	Poll(ctx context.Context, userId, clusterSlug, jobId string) (*v1.JobStatusData, error)
	JobLog(ctx context.Context, userId, clusterSlug, jobId string, since int64) (*v1.JobLogData, error)
	ListJobs(ctx context.Context, userId, clusterSlug string, limit int) (*v1.ListJobResponseData, error)
}

func NewJobDispatcher(
	service *Service,
	conf *viper.Viper,
	permission PermissionService,
	rapi RapiProvider,
	clusterRepo repository.ClusterRepository,
	nodeRepo repository.NodeRepository,
	vmRepo repository.VirtualMachineRepository,
	actionRepo repository.JobActionRepository,
	inflightRepo repository.InflightRepository,
	auditRepo repository.ActionLogRepository,
) JobDispatcher {
	ttl := conf.GetDuration("dispatch.inflight_ttl")
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &jobDispatcher{
		Service:      service,
		permission:   permission,
		rapi:         rapi,
		clusterRepo:  clusterRepo,
		nodeRepo:     nodeRepo,
		vmRepo:       vmRepo,
		actionRepo:   actionRepo,
		inflightRepo: inflightRepo,
		auditRepo:    auditRepo,
		inflightTTL:  ttl,
	}
}

type jobDispatcher struct {
	*Service
	permission   PermissionService
	rapi         RapiProvider
	clusterRepo  repository.ClusterRepository
	nodeRepo     repository.NodeRepository
	vmRepo       repository.VirtualMachineRepository
	actionRepo   repository.JobActionRepository
	inflightRepo repository.InflightRepository
	auditRepo    repository.ActionLogRepository
	inflightTTL  time.Duration
}

var nonTerminalStates = []string{model.JobStateSubmitted, model.JobStateRunning}

// stateOf maps a remote job status onto the action state machine.
func stateOf(job *ganeti.JobRecord) string {
	if job.IsTerminal() {
		switch job.Status {
		case ganeti.JobStatusSuccess:
			return model.JobStateSuccess
		case ganeti.JobStatusCanceled:
			return model.JobStateCanceled
		default:
			return model.JobStateError
		}
	}
	switch job.Status {
	case ganeti.JobStatusQueued, ganeti.JobStatusWaiting:
		return model.JobStateSubmitted
	default:
		return model.JobStateRunning
	}
}

func (s *jobDispatcher) cluster(ctx context.Context, slug string) (*model.Cluster, error) {
	cluster, err := s.clusterRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get cluster", zap.String("slug", slug), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	if cluster == nil {
		return nil, v1.ErrNotFound
	}
	return cluster, nil
}

func (s *jobDispatcher) client(ctx context.Context, cluster *model.Cluster) (ganeti.Client, error) {
	c, err := s.rapi.Client(cluster)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to build rapi client", zap.String("cluster", cluster.Slug), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return c, nil
}

// remoteError converts a facade error into the catalog kind callers see.
func remoteError(err error) error {
	var apiErr *ganeti.APIError
	switch {
	case errors.Is(err, ganeti.ErrRpcUnavailable), errors.Is(err, ganeti.ErrMalformed):
		return fmt.Errorf("%w: %v", v1.ErrRpcUnavailable, err)
	case errors.Is(err, ganeti.ErrNotFound):
		return fmt.Errorf("%w: %v", v1.ErrNotFound, err)
	case errors.Is(err, ganeti.ErrUnknownOp):
		return fmt.Errorf("%w: %v", v1.ErrInvalidAction, err)
	case errors.As(err, &apiErr):
		return fmt.Errorf("%w: %v", v1.ErrRemoteOperation, err)
	}
	return v1.ErrInternalServerError
}

func (s *jobDispatcher) lookupTarget(ctx context.Context, cluster *model.Cluster, kind, name string) (*dispatchTarget, error) {
	t := &dispatchTarget{kind: kind, name: name}
	var err error
	switch kind {
	case model.TargetInstance:
		t.instance, err = s.vmRepo.GetByName(ctx, cluster.Id, name)
		if err == nil && t.instance == nil {
			return nil, fmt.Errorf("%w: instance %s", v1.ErrNotFound, name)
		}
	case model.TargetNode:
		t.node, err = s.nodeRepo.GetByHostname(ctx, cluster.Id, name)
		if err == nil && t.node == nil {
			return nil, fmt.Errorf("%w: node %s", v1.ErrNotFound, name)
		}
	default:
		return nil, fmt.Errorf("%w: unknown target kind %q", v1.ErrInvalidAction, kind)
	}
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load target", zap.String("kind", kind), zap.String("name", name), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return t, nil
}

func (s *jobDispatcher) Submit(ctx context.Context, req *DispatchRequest) (*v1.JobActionData, error) {
	cluster, err := s.cluster(ctx, req.ClusterSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.permission.Subject(ctx, req.UserId)
	if err != nil {
		return nil, err
	}
	required := RequiredCapabilities(req.Action)
	if required == nil {
		return nil, fmt.Errorf("%w: unknown action %q", v1.ErrInvalidAction, req.Action)
	}
	if err := s.permission.Require(ctx, user, cluster.Id, required...); err != nil {
		return nil, err
	}

	target, err := s.lookupTarget(ctx, cluster, req.Kind, req.Target)
	if err != nil {
		return nil, err
	}
	spec, ok := actionTable[req.Kind][req.Action]
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be applied to a %s", v1.ErrInvalidAction, req.Action, req.Kind)
	}
	opParams, err := spec.validate(target, params(req.Params))
	if err != nil {
		return nil, err
	}

	actionId, err := s.sid.GenString()
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to generate action id", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	key := model.InflightKey(req.Kind, req.Target)
	if err := s.acquire(ctx, cluster, key, actionId); err != nil {
		return nil, err
	}

	client, err := s.client(ctx, cluster)
	if err != nil {
		s.release(ctx, cluster, key, actionId)
		return nil, err
	}
	jobId, err := client.SubmitJob(ctx, spec.op, opParams)
	if err != nil {
		s.release(ctx, cluster, key, actionId)
		s.logger.WithContext(ctx).Warn("job submission failed",
			zap.String("cluster", cluster.Slug), zap.String("target", key), zap.String("op", spec.op), zap.Error(err))
		s.audit(ctx, user, cluster, key, req.Action, "", model.JobStateRequested, err.Error())
		return nil, remoteError(err)
	}

	if err := s.inflightRepo.SetJobID(ctx, cluster.Id, key, actionId, jobId); err != nil {
		s.logger.WithContext(ctx).Error("failed to record job id in the in-flight index", zap.Error(err))
	}
	paramsJSON, _ := json.Marshal(req.Params)
	action := &model.JobAction{
		Id:         actionId,
		ClusterID:  cluster.Id,
		TargetKind: req.Kind,
		TargetName: req.Target,
		Action:     req.Action,
		Params:     string(paramsJSON),
		JobId:      jobId,
		State:      model.JobStateSubmitted,
		UserId:     user.UserId,
	}
	if err := s.actionRepo.Create(ctx, action); err != nil {
		// the job runs anyway; the in-flight entry expires with dispatch.inflight_ttl
		s.logger.WithContext(ctx).Error("failed to store job action", zap.String("job_id", jobId), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	s.logger.WithContext(ctx).Info("job submitted",
		zap.String("cluster", cluster.Slug),
		zap.String("target", key),
		zap.String("action", req.Action),
		zap.String("job_id", jobId),
		zap.String("user", user.Username))
	s.audit(ctx, user, cluster, key, req.Action, jobId, model.JobStateSubmitted, "")

	return actionData(cluster, action), nil
}

// acquire takes the in-flight slot of key. A slot left behind by a finished or abandoned
// action is reclaimed once.
func (s *jobDispatcher) acquire(ctx context.Context, cluster *model.Cluster, key, actionId string) error {
	for attempt := 0; attempt < 2; attempt++ {
		ok, err := s.inflightRepo.Acquire(ctx, &model.InflightJob{
			ClusterID:  cluster.Id,
			Target:     key,
			ActionId:   actionId,
			CreateTime: time.Now(),
		})
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to acquire in-flight slot", zap.String("target", key), zap.Error(err))
			return v1.ErrInternalServerError
		}
		if ok {
			return nil
		}
		holder, err := s.inflightRepo.Get(ctx, cluster.Id, key)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to read in-flight slot", zap.String("target", key), zap.Error(err))
			return v1.ErrInternalServerError
		}
		if holder == nil {
			// released between our insert and the read
			continue
		}
		stale, err := s.isStale(ctx, holder)
		if err != nil {
			return err
		}
		if !stale {
			break
		}
		s.logger.WithContext(ctx).Info("reclaiming stale in-flight slot", zap.String("target", key), zap.String("holder", holder.ActionId))
		s.release(ctx, cluster, key, holder.ActionId)
	}
	return fmt.Errorf("%w: %s on %s", v1.ErrConflict, key, cluster.Slug)
}

func (s *jobDispatcher) isStale(ctx context.Context, holder *model.InflightJob) (bool, error) {
	action, err := s.actionRepo.GetByID(ctx, holder.ActionId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to load in-flight action", zap.Error(err))
		return false, v1.ErrInternalServerError
	}
	if action != nil {
		return action.IsTerminal(), nil
	}
	// no action row: either a submission is still in progress or it died half way
	return time.Since(holder.CreateTime) > s.inflightTTL, nil
}

func (s *jobDispatcher) release(ctx context.Context, cluster *model.Cluster, key, actionId string) {
	if err := s.inflightRepo.Release(ctx, cluster.Id, key, actionId); err != nil {
		s.logger.WithContext(ctx).Error("failed to release in-flight slot", zap.String("target", key), zap.Error(err))
	}
}

func (s *jobDispatcher) audit(ctx context.Context, user *model.User, cluster *model.Cluster, target, action, jobId, state, message string) {
	err := s.auditRepo.Insert(ctx, &model.ActionLog{
		UserId:     user.UserId,
		Cluster:    cluster.Slug,
		Target:     target,
		Action:     action,
		JobId:      jobId,
		State:      state,
		Message:    message,
		CreateTime: time.Now(),
	})
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to write action log", zap.Error(err))
	}
}

// tracked loads the action behind jobId and checks the caller may look at it: its requester,
// or anyone allowed to run the same action on the cluster.
func (s *jobDispatcher) tracked(ctx context.Context, userId, clusterSlug, jobId string) (*model.User, *model.Cluster, *model.JobAction, error) {
	cluster, err := s.cluster(ctx, clusterSlug)
	if err != nil {
		return nil, nil, nil, err
	}
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, nil, nil, err
	}
	action, err := s.actionRepo.GetByJobID(ctx, cluster.Id, jobId)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to get job action", zap.String("job_id", jobId), zap.Error(err))
		return nil, nil, nil, v1.ErrInternalServerError
	}
	if action == nil {
		return nil, nil, nil, fmt.Errorf("%w: job %s", v1.ErrNotFound, jobId)
	}
	if action.UserId != user.UserId {
		if err := s.permission.Require(ctx, user, cluster.Id, RequiredCapabilities(action.Action)...); err != nil {
			return nil, nil, nil, err
		}
	}
	return user, cluster, action, nil
}

// advance polls the cluster once for a non-terminal action and moves its state forward.
// Terminal actions are answered from their stored snapshot and never polled again.
func (s *jobDispatcher) advance(ctx context.Context, user *model.User, cluster *model.Cluster, action *model.JobAction) (*ganeti.JobRecord, error) {
	if action.IsTerminal() {
		return s.snapshot(ctx, action)
	}

	client, err := s.client(ctx, cluster)
	if err != nil {
		return nil, err
	}
	job, err := client.PollJob(ctx, action.JobId)
	if err != nil {
		s.logger.WithContext(ctx).Warn("job poll failed", zap.String("cluster", cluster.Slug), zap.String("job_id", action.JobId), zap.Error(err))
		return nil, remoteError(err)
	}

	next := stateOf(job)
	switch {
	case model.IsTerminalJobState(next):
		snapshot, err := json.Marshal(job)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to encode job snapshot", zap.Error(err))
			return nil, v1.ErrInternalServerError
		}
		update := *action
		update.State = next
		update.Snapshot = string(snapshot)
		if next == model.JobStateError {
			if opErr := job.OpError(); opErr != nil {
				messages, _ := json.Marshal(opErr.Messages)
				update.ErrorClass = opErr.Class
				update.ErrorMessages = string(messages)
			}
		}
		won, err := s.actionRepo.Advance(ctx, &update, nonTerminalStates...)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to advance job action", zap.Error(err))
			return nil, v1.ErrInternalServerError
		}
		if !won {
			// a concurrent poll stored the terminal snapshot first; answer with that one
			return s.reload(ctx, action)
		}
		*action = update
		key := model.InflightKey(action.TargetKind, action.TargetName)
		s.release(ctx, cluster, key, action.Id)
		s.applyOutcome(ctx, cluster, action)
		s.audit(ctx, user, cluster, key, action.Action, action.JobId, action.State, strings.Join(job.Summary, ", "))
		s.logger.WithContext(ctx).Info("job finished",
			zap.String("cluster", cluster.Slug), zap.String("job_id", action.JobId), zap.String("state", action.State))
		return s.snapshot(ctx, action)
	case next == model.JobStateRunning && action.State == model.JobStateSubmitted:
		update := *action
		update.State = next
		won, err := s.actionRepo.Advance(ctx, &update, model.JobStateSubmitted)
		if err != nil {
			s.logger.WithContext(ctx).Error("failed to advance job action", zap.Error(err))
			return nil, v1.ErrInternalServerError
		}
		if !won {
			return s.reloadRunning(ctx, action, job)
		}
		*action = update
	}
	// a queued snapshot after RUNNING leaves the state where it is
	return job, nil
}

func (s *jobDispatcher) reload(ctx context.Context, action *model.JobAction) (*ganeti.JobRecord, error) {
	fresh, err := s.actionRepo.GetByID(ctx, action.Id)
	if err != nil || fresh == nil {
		s.logger.WithContext(ctx).Error("failed to reload job action", zap.String("id", action.Id), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	*action = *fresh
	return s.snapshot(ctx, action)
}

func (s *jobDispatcher) reloadRunning(ctx context.Context, action *model.JobAction, job *ganeti.JobRecord) (*ganeti.JobRecord, error) {
	fresh, err := s.actionRepo.GetByID(ctx, action.Id)
	if err != nil || fresh == nil {
		s.logger.WithContext(ctx).Error("failed to reload job action", zap.String("id", action.Id), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	*action = *fresh
	if action.IsTerminal() {
		return s.snapshot(ctx, action)
	}
	return job, nil
}

func (s *jobDispatcher) snapshot(ctx context.Context, action *model.JobAction) (*ganeti.JobRecord, error) {
	job, err := ganeti.ParseJob([]byte(action.Snapshot))
	if err != nil {
		s.logger.WithContext(ctx).Error("stored job snapshot is unreadable", zap.String("id", action.Id), zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	return job, nil
}

// applyOutcome reflects a successful instance action in the cache until the next refresh.
func (s *jobDispatcher) applyOutcome(ctx context.Context, cluster *model.Cluster, action *model.JobAction) {
	if action.State != model.JobStateSuccess || action.TargetKind != model.TargetInstance {
		return
	}
	var err error
	switch action.Action {
	case ActionStartup, ActionReboot:
		err = s.vmRepo.UpdateStatus(ctx, cluster.Id, action.TargetName, string(ganeti.StatusRunning))
	case ActionShutdown:
		err = s.vmRepo.UpdateStatus(ctx, cluster.Id, action.TargetName, string(ganeti.StatusAdminDown))
	case ActionRemove:
		err = s.vmRepo.DeleteByName(ctx, cluster.Id, action.TargetName)
	}
	if err != nil {
		s.logger.WithContext(ctx).Warn("failed to update cached instance", zap.String("instance", action.TargetName), zap.Error(err))
	}
}

func actionData(cluster *model.Cluster, action *model.JobAction) *v1.JobActionData {
	return &v1.JobActionData{
		ActionId:   action.Id,
		Cluster:    cluster.Slug,
		TargetKind: action.TargetKind,
		Target:     action.TargetName,
		Action:     action.Action,
		JobId:      action.JobId,
		State:      action.State,
		CreateTime: action.CreateTime,
	}
}

func (s *jobDispatcher) Poll(ctx context.Context, userId, clusterSlug, jobId string) (*v1.JobStatusData, error) {
	user, cluster, action, err := s.tracked(ctx, userId, clusterSlug, jobId)
	if err != nil {
		return nil, err
	}
	job, err := s.advance(ctx, user, cluster, action)
	if err != nil {
		return nil, err
	}

	data := &v1.JobStatusData{
		JobActionData: *actionData(cluster, action),
		Terminal:      action.IsTerminal(),
		Summary:       job.Summary,
		Job:           job,
	}
	if action.State == model.JobStateError {
		data.Error = &v1.RemoteErrorData{Class: action.ErrorClass, Messages: []string{}}
		if action.ErrorMessages != "" {
			_ = json.Unmarshal([]byte(action.ErrorMessages), &data.Error.Messages)
		}
	}
	return data, nil
}

func (s *jobDispatcher) JobLog(ctx context.Context, userId, clusterSlug, jobId string, since int64) (*v1.JobLogData, error) {
	user, cluster, action, err := s.tracked(ctx, userId, clusterSlug, jobId)
	if err != nil {
		return nil, err
	}
	job, err := s.advance(ctx, user, cluster, action)
	if err != nil {
		return nil, err
	}
	return &v1.JobLogData{
		State:    action.State,
		Terminal: action.IsTerminal(),
		Entries:  job.Log(since),
	}, nil
}

func (s *jobDispatcher) ListJobs(ctx context.Context, userId, clusterSlug string, limit int) (*v1.ListJobResponseData, error) {
	cluster, err := s.cluster(ctx, clusterSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.permission.Subject(ctx, userId)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	// cluster admins see everyone's actions, other users only their own
	owner := user.UserId
	isAdmin, err := s.permission.Authorize(ctx, user, cluster.Id, model.CapAdmin)
	if err != nil {
		return nil, err
	}
	if isAdmin {
		owner = ""
	}
	actions, err := s.actionRepo.ListRecent(ctx, cluster.Id, owner, limit)
	if err != nil {
		s.logger.WithContext(ctx).Error("failed to list job actions", zap.Error(err))
		return nil, v1.ErrInternalServerError
	}
	data := &v1.ListJobResponseData{List: make([]v1.JobActionData, 0, len(actions))}
	for _, a := range actions {
		data.List = append(data.List, *actionData(cluster, a))
	}
	return data, nil
}
