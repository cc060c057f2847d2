// Package advisor answers free-form questions about a household's finances with
// Gemini, grounding the conversation in the current month's figures.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dvloznov/household-finance/internal/aggregate"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/logger"
	"google.golang.org/genai"
)

// ErrAdviceFailed wraps model failures and empty replies.
var ErrAdviceFailed = errors.New("advisor failed")

const (
	RoleUser  = "user"
	RoleModel = "model"

	// recentContextSize caps how many transactions are quoted to the model.
	recentContextSize = 50
)

// Turn is one message of the chat history.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Snapshot is the household state the advisor reasons about.
type Snapshot struct {
	Transactions []domain.Transaction
	Goals        []domain.Goal
}

type Advisor struct {
	gen     extract.Generator
	model   string
	timeout time.Duration
	now     func() time.Time
}

func New(gen extract.Generator, model string, timeout time.Duration) *Advisor {
	if model == "" {
		model = extract.DefaultStatementModel
	}
	if timeout <= 0 {
		timeout = extract.DefaultTimeout
	}
	return &Advisor{gen: gen, model: model, timeout: timeout, now: time.Now}
}

// WithClock overrides the clock used to pick the current month.
func (a *Advisor) WithClock(now func() time.Time) *Advisor {
	a.now = now
	return a
}

// Ask sends message with the prior history and returns the model's reply.
func (a *Advisor) Ask(ctx context.Context, snap Snapshot, history []Turn, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", fmt.Errorf("Ask: empty message")
	}

	contents := make([]*genai.Content, 0, len(history)+1)
	for i, turn := range history {
		role := genai.Role(turn.Role)
		if turn.Role != RoleUser && turn.Role != RoleModel {
			return "", fmt.Errorf("Ask: history turn %d: unknown role %q", i, turn.Role)
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buildSystemInstruction(snap, a.now()), genai.RoleUser),
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	log := logger.FromContext(ctx)
	start := time.Now()
	resp, err := a.gen.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		log.Error().Err(err).Str("model", a.model).Msg("Advisor call failed")
		return "", fmt.Errorf("Ask: %w: generate content: %w", ErrAdviceFailed, err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", fmt.Errorf("Ask: %w: empty reply", ErrAdviceFailed)
	}

	log.Info().
		Str("model", a.model).
		Int("history_turns", len(history)).
		Dur("duration", time.Since(start)).
		Msg("Advisor replied")
	return reply, nil
}

func buildSystemInstruction(snap Snapshot, now time.Time) string {
	month := domain.MonthOf(now)
	totals := aggregate.MonthlyTotals(snap.Transactions, month)

	var b strings.Builder
	b.WriteString("És um consultor financeiro pessoal experiente e empático, especializado no mercado português.\n")
	b.WriteString("O teu objetivo é ajudar a família a gerir o orçamento, poupar dinheiro, atingir metas e investir com sabedoria.\n\n")

	fmt.Fprintf(&b, "DADOS FINANCEIROS DO MÊS %s:\n", month)
	fmt.Fprintf(&b, "- Receitas: %s\n", domain.FormatEUR(totals.Income))
	fmt.Fprintf(&b, "- Despesas: %s\n", domain.FormatEUR(totals.Expense))
	fmt.Fprintf(&b, "- Poupanças: %s\n", domain.FormatEUR(totals.Savings))
	fmt.Fprintf(&b, "- Investimentos: %s\n", domain.FormatEUR(totals.Investment))
	fmt.Fprintf(&b, "- Disponível: %s\n", domain.FormatEUR(totals.Balance))
	fmt.Fprintf(&b, "- Taxa de Poupança: %s%%\n\n", totals.SavingsRate.StringFixed(1))

	if len(snap.Goals) == 0 {
		b.WriteString("Ainda não têm metas definidas.\n\n")
	} else {
		b.WriteString("METAS FINANCEIRAS:\n")
		for _, g := range snap.Goals {
			s := aggregate.GoalProgress(g, now)
			fmt.Fprintf(&b, "- %s: %s / %s (%s%%) - Prazo: %s\n",
				g.Name, domain.FormatEUR(g.CurrentAmount), domain.FormatEUR(g.TargetAmount),
				s.Percent.StringFixed(0), g.Deadline)
		}
		b.WriteString("\n")
	}

	recent := aggregate.RecentTransactions(snap.Transactions, recentContextSize)
	fmt.Fprintf(&b, "TRANSAÇÕES RECENTES (últimas %d):\n", len(recent))
	for _, tx := range recent {
		fmt.Fprintf(&b, "%s: %s (%s) - %s - %s [%s]\n",
			tx.Date, tx.Description, domain.FormatEUR(tx.Amount), tx.Type, tx.Category, tx.Member)
	}

	b.WriteString(`
DIRETRIZES:
1. Responde sempre em Português de Portugal, usando markdown para formatação.
2. Sê conciso, prático e motivador.
3. Usa os dados fornecidos para dar conselhos específicos e personalizados.
4. Analisa padrões: gastos recorrentes, categorias com mais despesas, oportunidades de poupança.
5. Se houver metas, analisa se estão no caminho certo e sugere ajustes.
6. Para metas não definidas, sugere criar (ex: fundo de emergência = 6 meses de despesas).
7. Se te perguntarem sobre impostos ou leis, refere que devem consultar um contabilista, mas dá orientações gerais.
8. Se sugeres algo, explica como implementar.
`)
	return b.String()
}
