package flows

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emberwallet/v1/client/core/account"
	"github.com/emberwallet/v1/client/core/asset"
	"github.com/emberwallet/v1/client/core/balance"
	"github.com/emberwallet/v1/client/core/transport"
	infralog "github.com/emberwallet/v1/internal/core/infrastructure/log"
	"github.com/emberwallet/v1/pkg/utils"
)

// validRecipient 42位的合法接收方地址
const validRecipient = "0x1234567890abcdef1234567890abcdef12345678"

// ============================================================================
// 测试桩
// ============================================================================

type stubBalance struct {
	mu   sync.Mutex
	snap *balance.Balance
}

func (s *stubBalance) Latest() *balance.Balance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

func (s *stubBalance) set(snap *balance.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

func balanceOfEther(display string) *balance.Balance {
	v, err := utils.ParseDecimalToWei(display)
	if err != nil {
		panic(err)
	}
	return &balance.Balance{
		MaximumSendableBalance:        v,
		DisplayMaximumSendableBalance: display,
	}
}

type stubSearcher struct {
	resolveFn func(text string) *account.AccountCandidate
	searchFn  func(query string) []*account.AccountCandidate
}

func (s *stubSearcher) Resolve(ctx context.Context, text string) (*account.AccountCandidate, error) {
	if s.resolveFn == nil {
		return nil, nil
	}
	return s.resolveFn(text), nil
}

func (s *stubSearcher) Search(ctx context.Context, query string) []*account.AccountCandidate {
	if s.searchFn == nil {
		return nil
	}
	return s.searchFn(query)
}

type stubScanner struct {
	address string
	err     error
}

func (s *stubScanner) Scan(ctx context.Context) (string, error) {
	return s.address, s.err
}

// fakeAsset 可控的资产桩
type fakeAsset struct {
	id       string
	name     string
	messages bool

	mu       sync.Mutex
	sent     []*asset.SendParams
	receipt  *transport.Receipt
	sendErr  error
	blockOn  chan struct{} // 非nil时Send阻塞至通道关闭
}

func (a *fakeAsset) ID() string             { return a.id }
func (a *fakeAsset) Name() string           { return a.name }
func (a *fakeAsset) Network() string        { return "5777" }
func (a *fakeAsset) SupportsMessages() bool { return a.messages }
func (a *fakeAsset) GetDisplayValue(baseUnits *big.Int) string {
	return utils.FormatWeiToDecimal(baseUnits)
}

func (a *fakeAsset) Send(ctx context.Context, params *asset.SendParams) (*transport.Receipt, error) {
	if a.blockOn != nil {
		<-a.blockOn
	}
	a.mu.Lock()
	a.sent = append(a.sent, params)
	a.mu.Unlock()
	if a.sendErr != nil {
		return nil, a.sendErr
	}
	return a.receipt, nil
}

func (a *fakeAsset) sendCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.sent)
}

func (a *fakeAsset) lastSent() *asset.SendParams {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.sent) == 0 {
		return nil
	}
	return a.sent[len(a.sent)-1]
}

func newTestRegistry(t *testing.T, assets ...asset.Asset) *asset.Registry {
	t.Helper()
	r, err := asset.NewRegistry(assets...)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func newTestForm(t *testing.T, registry *asset.Registry, balances BalanceSource, searcher AccountSearcher, scanner QRScanner) *SendForm {
	t.Helper()
	if balances == nil {
		balances = &stubBalance{}
	}
	if searcher == nil {
		searcher = &stubSearcher{}
	}
	return NewSendForm(registry, balances, searcher, scanner, infralog.NewNop())
}

// waitFor 轮询直到条件成立
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// ============================================================================
// 录入期守卫
// ============================================================================

func TestSendForm_CanSend(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})

	tests := []struct {
		name      string
		recipient string
		sending   bool
		want      bool
	}{
		{"valid 42-char address", validRecipient, false, true},
		{"empty recipient", "", false, false},
		{"too short", "0x1234", false, false},
		{"too long", validRecipient + "ab", false, false},
		{"41 chars", validRecipient[:41], false, false},
		{"sending in flight", validRecipient, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := newTestForm(t, registry, nil, nil, nil)
			if tt.recipient != "" {
				form.SetRecipient(context.Background(), tt.recipient)
			}
			if tt.sending {
				form.mu.Lock()
				form.sending = true
				form.mu.Unlock()
			}
			if got := form.CanSend(); got != tt.want {
				t.Errorf("CanSend() = %v, want %v", got, tt.want)
			}
		})
	}
}

// ============================================================================
// 金额二态
// ============================================================================

func TestSendForm_MaxPinnedThenLiteralEditClears(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	balances := &stubBalance{snap: balanceOfEther("100")}
	form := newTestForm(t, registry, balances, nil, nil)

	form.SetAmount("", true)
	if !form.MaxPinned() {
		t.Fatal("send-max should pin when balance loaded")
	}
	if form.AmountText() != "100" {
		t.Errorf("AmountText() = %v, want 100", form.AmountText())
	}

	// 任何字面编辑解除钉住
	form.SetAmount("42", false)
	if form.MaxPinned() {
		t.Error("literal edit must clear pinned max")
	}
	if form.AmountText() != "42" {
		t.Errorf("AmountText() = %v, want 42", form.AmountText())
	}
}

func TestSendForm_MaxIgnoredWithoutBalance(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	form := newTestForm(t, registry, &stubBalance{}, nil, nil)

	form.SetAmount("1.0", false)
	form.SetAmount("", true)
	if form.MaxPinned() {
		t.Error("send-max must not pin before balance loads")
	}
	if form.AmountText() != "1.0" {
		t.Errorf("AmountText() = %v, literal must survive ignored max", form.AmountText())
	}
}

func TestSendForm_BalanceGuard(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})

	tests := []struct {
		name    string
		balance *balance.Balance
		amount  string
		want    bool
	}{
		{"over balance", balanceOfEther("100"), "150", true},
		{"under balance", balanceOfEther("100"), "50", false},
		{"equal to balance", balanceOfEther("100"), "100", false},
		{"no balance loaded", nil, "150", false},
		{"unparseable amount", balanceOfEther("100"), "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := newTestForm(t, registry, &stubBalance{snap: tt.balance}, nil, nil)
			form.SetAmount(tt.amount, false)
			if got := form.ExceedsBalance(); got != tt.want {
				t.Errorf("ExceedsBalance() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSendForm_PinnedMaxNeverExceeds(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	balances := &stubBalance{snap: balanceOfEther("100")}
	form := newTestForm(t, registry, balances, nil, nil)

	form.SetAmount("", true)
	// 余额在钉住后缩水，钉住值依然不触发超额守卫
	balances.set(balanceOfEther("10"))
	if form.ExceedsBalance() {
		t.Error("pinned max must not trip the balance guard")
	}
}

// ============================================================================
// 接收方解析与检索
// ============================================================================

func TestSendForm_ExactMatchResolvesAndClearsCandidates(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	known := &account.AccountCandidate{Address: validRecipient, Name: "alice", Source: "book"}
	searcher := &stubSearcher{
		resolveFn: func(text string) *account.AccountCandidate {
			if strings.EqualFold(text, validRecipient) {
				return known
			}
			return nil
		},
		searchFn: func(query string) []*account.AccountCandidate {
			return []*account.AccountCandidate{{Address: "0xother", Name: "other"}}
		},
	}
	form := newTestForm(t, registry, nil, searcher, nil)

	// 先触发模糊检索填充候选
	form.SetRecipient(context.Background(), "ali")
	waitFor(t, func() bool { return len(form.Candidates()) == 1 }, "candidates not populated")

	// 精确命中后候选清空、账户选中
	form.SetRecipient(context.Background(), validRecipient)
	if form.Resolved() == nil || form.Resolved().Name != "alice" {
		t.Errorf("Resolved() = %v, want alice", form.Resolved())
	}
	if len(form.Candidates()) != 0 {
		t.Errorf("candidates = %v, want empty after exact match", form.Candidates())
	}
}

func TestSendForm_SelectCandidateAtomic(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	searcher := &stubSearcher{
		searchFn: func(query string) []*account.AccountCandidate {
			return []*account.AccountCandidate{
				{Address: validRecipient, Name: "alice"},
				{Address: "0xbbb", Name: "bob"},
			}
		},
	}
	form := newTestForm(t, registry, nil, searcher, nil)

	form.SetRecipient(context.Background(), "a")
	waitFor(t, func() bool { return len(form.Candidates()) == 2 }, "candidates not populated")

	form.SelectCandidate(&account.AccountCandidate{Address: validRecipient, Name: "alice"})

	if form.Resolved() == nil || form.Resolved().Name != "alice" {
		t.Errorf("Resolved() = %v, want alice", form.Resolved())
	}
	if len(form.Candidates()) != 0 {
		t.Error("candidate list must be cleared when a candidate is selected")
	}
	if form.Recipient() != validRecipient {
		t.Errorf("Recipient() = %v, want selected address", form.Recipient())
	}
}

func TestSendForm_StaleSearchDoesNotOverwrite(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})

	releaseSlow := make(chan struct{})
	searcher := &stubSearcher{
		searchFn: func(query string) []*account.AccountCandidate {
			if query == "al" {
				<-releaseSlow
				return []*account.AccountCandidate{{Address: "0xstale", Name: "stale"}}
			}
			return []*account.AccountCandidate{{Address: "0xfresh", Name: "fresh"}}
		},
	}
	form := newTestForm(t, registry, nil, searcher, nil)

	// 慢检索先发出，快检索后发出
	form.SetRecipient(context.Background(), "al")
	form.SetRecipient(context.Background(), "alice")
	waitFor(t, func() bool {
		c := form.Candidates()
		return len(c) == 1 && c[0].Name == "fresh"
	}, "fresh search result not applied")

	// 放行慢检索，过期结果必须被丢弃
	close(releaseSlow)
	time.Sleep(50 * time.Millisecond)
	if c := form.Candidates(); len(c) != 1 || c[0].Name != "fresh" {
		t.Errorf("candidates = %v, stale search must not overwrite fresh results", c)
	}
}

// ============================================================================
// 扫码
// ============================================================================

func TestSendForm_ScanRecipientSuccess(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	form := newTestForm(t, registry, nil, nil, &stubScanner{address: validRecipient})

	form.ScanRecipient(context.Background())
	waitFor(t, func() bool { return form.Recipient() == validRecipient }, "scan result not applied")
}

func TestSendForm_ScanFailureSilentlyIgnored(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	form := newTestForm(t, registry, nil, nil, &stubScanner{err: errors.New("user cancelled")})

	form.SetRecipient(context.Background(), validRecipient)
	form.ScanRecipient(context.Background())

	time.Sleep(50 * time.Millisecond)
	if form.Recipient() != validRecipient {
		t.Errorf("Recipient() = %v, failed scan must not change the field", form.Recipient())
	}
	if form.LastError() != nil {
		t.Error("failed scan must not surface an error")
	}
}

// ============================================================================
// 初始化合并
// ============================================================================

func TestSendForm_InitMergePriority(t *testing.T) {
	registry := newTestRegistry(t,
		&fakeAsset{id: "geth", name: "Ganache ETH"},
		&fakeAsset{id: "localerc20", name: "Local Token"},
	)
	form := newTestForm(t, registry, nil, nil, nil)

	seed := &Seed{Recipient: "0xseed", Amount: "9", Message: "from seed"}
	// 查询串覆盖导航状态
	err := form.Init(context.Background(), seed, "to="+validRecipient+"&asset=localerc20&message=hello+world")
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	if form.Recipient() != validRecipient {
		t.Errorf("Recipient() = %v, query param must win over seed", form.Recipient())
	}
	if form.AmountText() != "9" {
		t.Errorf("AmountText() = %v, seed value must survive absent query key", form.AmountText())
	}
	if form.SelectedAsset().ID() != "localerc20" {
		t.Errorf("asset = %v, want localerc20", form.SelectedAsset().ID())
	}

	form.mu.Lock()
	message := form.message
	form.mu.Unlock()
	if message != "hello world" {
		t.Errorf("message = %q, want decoded query value", message)
	}
}

func TestSendForm_InitDefaultsToFirstAsset(t *testing.T) {
	registry := newTestRegistry(t,
		&fakeAsset{id: "geth", name: "Ganache ETH"},
		&fakeAsset{id: "localerc20", name: "Local Token"},
	)
	form := newTestForm(t, registry, nil, nil, nil)

	if err := form.Init(context.Background(), nil, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if form.SelectedAsset().ID() != "geth" {
		t.Errorf("default asset = %v, want first registered", form.SelectedAsset().ID())
	}
}

func TestSendForm_InitUnknownAssetFails(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	form := newTestForm(t, registry, nil, nil, nil)

	if err := form.Init(context.Background(), nil, "asset=unknown"); err == nil {
		t.Error("Init() with unknown asset should fail")
	}
}

// ============================================================================
// 提交
// ============================================================================

func TestSendForm_SubmitBuildsIntent(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH", messages: true})
	form := newTestForm(t, registry, nil, nil, nil)
	if err := form.Init(context.Background(), nil, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	form.SetRecipient(context.Background(), validRecipient)
	form.SetAmount("1.5", false)

	intent, err := form.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if intent.Recipient != validRecipient || intent.AssetID != "geth" || intent.Ether != "1.5" {
		t.Errorf("intent = %+v", intent)
	}
	if intent.Value != nil {
		t.Error("literal amount must not carry a pinned value")
	}
	if intent.Message != nil {
		t.Error("empty message must be omitted (nil)")
	}
	if !form.mustSending() {
		t.Error("form must be sending after Submit")
	}
	if form.CanSend() {
		t.Error("CanSend() must be false while sending")
	}

	form.EndSubmission()
	if !form.CanSend() {
		t.Error("CanSend() must recover after EndSubmission")
	}
}

func (f *SendForm) mustSending() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sending
}

func TestSendForm_SubmitPinnedMaxTakesPrecedence(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})
	balances := &stubBalance{snap: balanceOfEther("100")}
	form := newTestForm(t, registry, balances, nil, nil)
	if err := form.Init(context.Background(), nil, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	form.SetRecipient(context.Background(), validRecipient)
	form.SetAmount("0.5", false)
	form.SetAmount("", true)

	intent, err := form.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	want, _ := utils.ParseDecimalToWei("100")
	if intent.Value == nil || intent.Value.Cmp(want) != 0 {
		t.Errorf("intent.Value = %v, want pinned max %v", intent.Value, want)
	}
}

func TestSendForm_SubmitMessageOnlyWhenSupported(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "localerc20", name: "Local Token", messages: false})
	form := newTestForm(t, registry, nil, nil, nil)
	if err := form.Init(context.Background(), nil, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	form.SetRecipient(context.Background(), validRecipient)
	form.SetAmount("1", false)
	form.SetMessage("ignored")

	intent, err := form.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if intent.Message != nil {
		t.Error("message must be omitted for assets without message support")
	}
}

func TestSendForm_SubmitNoAssetSelected(t *testing.T) {
	registry := newTestRegistry(t)
	form := newTestForm(t, registry, nil, nil, nil)
	form.SetRecipient(context.Background(), validRecipient)

	if _, err := form.Submit(); !errors.Is(err, ErrNoAssetSelected) {
		t.Errorf("Submit() error = %v, want ErrNoAssetSelected", err)
	}
}

func TestSendForm_SubmitBlockedByGuards(t *testing.T) {
	registry := newTestRegistry(t, &fakeAsset{id: "geth", name: "Ganache ETH"})

	t.Run("bad recipient", func(t *testing.T) {
		form := newTestForm(t, registry, nil, nil, nil)
		form.SetRecipient(context.Background(), "0xshort")
		if _, err := form.Submit(); !errors.Is(err, ErrSubmissionBlocked) {
			t.Errorf("Submit() error = %v, want ErrSubmissionBlocked", err)
		}
	})

	t.Run("over balance", func(t *testing.T) {
		form := newTestForm(t, registry, &stubBalance{snap: balanceOfEther("100")}, nil, nil)
		form.SetRecipient(context.Background(), validRecipient)
		form.SetAmount("150", false)
		if _, err := form.Submit(); !errors.Is(err, ErrSubmissionBlocked) {
			t.Errorf("Submit() error = %v, want ErrSubmissionBlocked", err)
		}
	})
}

func TestSendForm_SelectAssetBlockedWhileSending(t *testing.T) {
	registry := newTestRegistry(t,
		&fakeAsset{id: "geth", name: "Ganache ETH"},
		&fakeAsset{id: "localerc20", name: "Local Token"},
	)
	form := newTestForm(t, registry, nil, nil, nil)
	if err := form.Init(context.Background(), nil, ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	form.SetRecipient(context.Background(), validRecipient)
	form.SetAmount("1", false)

	if _, err := form.Submit(); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if err := form.SelectAsset("localerc20"); !errors.Is(err, ErrSubmissionBlocked) {
		t.Errorf("SelectAsset() error = %v, want ErrSubmissionBlocked", err)
	}

	form.EndSubmission()
	if err := form.SelectAsset("localerc20"); err != nil {
		t.Errorf("SelectAsset() after EndSubmission error = %v", err)
	}
}
