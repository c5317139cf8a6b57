package flows

import (
	"context"

	"github.com/emberwallet/v1/pkg/interfaces/infrastructure/log"

	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/pkg/ux/nav"
)

// WorkflowRouter 发送工作流路由器
//
// 功能：
//   - 按 发送表单 → 确认 → 回执 的顺序推进工作流
//   - 转账意图经导航状态一次性交接，绝不共享可变引用
//   - 发送方地址缺失时用默认账户补齐
type WorkflowRouter struct {
	history     *nav.History
	form        *SendForm
	registry    *asset.Registry
	advisory    Advisory
	hook        PostSendHook
	logger      log.Logger
	defaultFrom string
}

// NewWorkflowRouter 创建工作流路由器
func NewWorkflowRouter(
	history *nav.History,
	form *SendForm,
	registry *asset.Registry,
	advisory Advisory,
	hook PostSendHook,
	logger log.Logger,
	defaultFrom string,
) *WorkflowRouter {
	return &WorkflowRouter{
		history:     history,
		form:        form,
		registry:    registry,
		advisory:    advisory,
		hook:        hook,
		logger:      logger,
		defaultFrom: defaultFrom,
	}
}

// OpenSendForm 进入发送页并初始化表单
//
// path 可携带预填查询串，如 "/send?to=0xabc&amount=1.5"；
// seed 为上一步交接的预填数据，经导航状态携带，可为nil。
// 同名字段以查询串为准。
func (r *WorkflowRouter) OpenSendForm(ctx context.Context, path string, seed *Seed) error {
	r.history.Push(path, seed)
	loc := r.history.Current()

	if s, ok := loc.State.(*Seed); ok {
		seed = s
	}
	return r.form.Init(ctx, seed, loc.Query)
}

// AdvanceToConfirm 从表单推进到确认步骤
//
// 表单产出意图后补齐发送方地址，把意图作为导航状态压入确认页。
func (r *WorkflowRouter) AdvanceToConfirm() (*ConfirmFlow, error) {
	intent, err := r.form.Submit()
	if err != nil {
		return nil, err
	}
	if intent.From == "" {
		intent.From = r.defaultFrom
	}

	r.history.Push("/confirm", intent)

	confirm := NewConfirmFlow(r.registry, r.history, r.advisory, r.hook, r.logger)
	if err := confirm.Enter(); err != nil {
		r.form.EndSubmission()
		return nil, err
	}
	return confirm, nil
}

// CompleteSend 在确认步骤执行提交
//
// 成功返回回执页路径；失败保持在确认页，表单恢复可编辑以便重试。
func (r *WorkflowRouter) CompleteSend(ctx context.Context, confirm *ConfirmFlow) (string, error) {
	redirect, err := confirm.Confirm(ctx)
	if err != nil {
		r.form.EndSubmission()
		return "", err
	}
	return redirect, nil
}

// CancelConfirm 取消确认，回到发送页
func (r *WorkflowRouter) CancelConfirm(confirm *ConfirmFlow) {
	confirm.Cancel()
	r.form.EndSubmission()
}
