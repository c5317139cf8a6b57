package flows

import (
	"context"
	"errors"
	"testing"

	"github.com/emberwallet/v1/client/core/transport"
	"github.com/emberwallet/v1/client/pkg/ux/nav"
	infralog "github.com/emberwallet/v1/internal/core/infrastructure/log"
)

const defaultFrom = "0xffffffffffffffffffffffffffffffffffffffff"

func newTestRouter(t *testing.T, ast *fakeAsset, hook PostSendHook) (*WorkflowRouter, *nav.History, *SendForm) {
	t.Helper()
	registry := newTestRegistry(t, ast)
	history := nav.NewHistory("/")
	form := newTestForm(t, registry, nil, nil, nil)
	router := NewWorkflowRouter(history, form, registry, &stubAdvisory{}, hook, infralog.NewNop(), defaultFrom)
	return router, history, form
}

func TestWorkflowRouter_FullSendScenario(t *testing.T) {
	ast := &fakeAsset{
		id: "geth", name: "Ganache ETH", messages: true,
		receipt: &transport.Receipt{TransactionHash: "0xfinal", Status: 1},
	}
	router, history, _ := newTestRouter(t, ast, &stubHook{})

	// 查询串预填：接收方、资产、金额
	err := router.OpenSendForm(context.Background(), "/send?to="+validRecipient+"&asset=geth&amount=1.5", nil)
	if err != nil {
		t.Fatalf("OpenSendForm() error = %v", err)
	}

	confirm, err := router.AdvanceToConfirm()
	if err != nil {
		t.Fatalf("AdvanceToConfirm() error = %v", err)
	}
	if history.Current().Path != "/confirm" {
		t.Errorf("path = %v, want /confirm", history.Current().Path)
	}

	// 发送方缺失时由默认账户补齐
	intent := history.Current().State.(*TransferIntent)
	if intent.From != defaultFrom {
		t.Errorf("intent.From = %v, want default account", intent.From)
	}

	redirect, err := router.CompleteSend(context.Background(), confirm)
	if err != nil {
		t.Fatalf("CompleteSend() error = %v", err)
	}
	if redirect != "/receipt/geth/0xfinal" {
		t.Errorf("redirect = %v", redirect)
	}
	if sent := ast.lastSent(); sent.From != defaultFrom || sent.Ether != "1.5" {
		t.Errorf("send params = %+v", sent)
	}
}

func TestWorkflowRouter_FailedSendAllowsRetry(t *testing.T) {
	ast := &fakeAsset{id: "geth", name: "Ganache ETH", sendErr: errors.New("node rejected")}
	router, history, form := newTestRouter(t, ast, nil)

	if err := router.OpenSendForm(context.Background(), "/send?to="+validRecipient+"&amount=1", nil); err != nil {
		t.Fatalf("OpenSendForm() error = %v", err)
	}

	confirm, err := router.AdvanceToConfirm()
	if err != nil {
		t.Fatalf("AdvanceToConfirm() error = %v", err)
	}

	if _, err := router.CompleteSend(context.Background(), confirm); err == nil {
		t.Fatal("CompleteSend() should surface the failure")
	}

	// 失败停留在确认页，表单恢复可编辑，提交锁解除
	if history.Current().Path != "/confirm" {
		t.Errorf("path = %v, want /confirm after failure", history.Current().Path)
	}
	if confirm.Busy() {
		t.Error("confirm lock must be released after failure")
	}
	if !form.CanSend() {
		t.Error("form must be editable again after failure")
	}
}

func TestWorkflowRouter_CancelConfirmReturnsToForm(t *testing.T) {
	ast := &fakeAsset{id: "geth", name: "Ganache ETH"}
	router, history, form := newTestRouter(t, ast, nil)

	if err := router.OpenSendForm(context.Background(), "/send?to="+validRecipient+"&amount=1", nil); err != nil {
		t.Fatalf("OpenSendForm() error = %v", err)
	}
	confirm, err := router.AdvanceToConfirm()
	if err != nil {
		t.Fatalf("AdvanceToConfirm() error = %v", err)
	}

	router.CancelConfirm(confirm)
	if history.Current().Path != "/send" {
		t.Errorf("path = %v, want /send after cancel", history.Current().Path)
	}
	if !form.CanSend() {
		t.Error("form must be editable after cancel")
	}
}

func TestWorkflowRouter_GuardBlocksAdvance(t *testing.T) {
	ast := &fakeAsset{id: "geth", name: "Ganache ETH"}
	router, history, _ := newTestRouter(t, ast, nil)

	if err := router.OpenSendForm(context.Background(), "/send?to=0xshort", nil); err != nil {
		t.Fatalf("OpenSendForm() error = %v", err)
	}

	if _, err := router.AdvanceToConfirm(); !errors.Is(err, ErrSubmissionBlocked) {
		t.Errorf("AdvanceToConfirm() error = %v, want ErrSubmissionBlocked", err)
	}
	if history.Current().Path != "/send" {
		t.Errorf("path = %v, blocked advance must stay on /send", history.Current().Path)
	}
}
