package extract

import (
	"strings"
	"time"

	"github.com/dvloznov/household-finance/internal/domain"
	"google.golang.org/genai"
)

func typeEnum(types []domain.Type) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = string(t)
	}
	return out
}

func statementConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date":        {Type: genai.TypeString, Description: "Transaction date, YYYY-MM-DD"},
					"description": {Type: genai.TypeString, Description: "Merchant or counterparty"},
					"amount":      {Type: genai.TypeNumber, Description: "Absolute amount, never negative"},
					"type":        {Type: genai.TypeString, Enum: typeEnum(domain.Types)},
					"category":    {Type: genai.TypeString},
				},
				Required: []string{"date", "description", "amount", "type", "category"},
			},
		},
	}
}

func receiptConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"description": {Type: genai.TypeString, Description: "Store or merchant name"},
				"amount":      {Type: genai.TypeNumber, Description: "Receipt total"},
				"date":        {Type: genai.TypeString, Description: "Receipt date, YYYY-MM-DD"},
				"category":    {Type: genai.TypeString},
				"type": {
					Type: genai.TypeString,
					Enum: typeEnum([]domain.Type{domain.TypeIncome, domain.TypeExpense}),
				},
			},
			Required: []string{"description", "amount", "category"},
		},
	}
}

func writeCategories(b *strings.Builder, categories []string) {
	b.WriteString("Use one of these categories when it fits, otherwise pick a short new one:\n")
	for _, c := range categories {
		b.WriteString("  - " + c + "\n")
	}
	b.WriteString("\n")
}

func buildStatementPrompt(now time.Time, categories []string, text string) string {
	var b strings.Builder
	b.WriteString("Extract every transaction from the bank statement below.\n")
	b.WriteString("Today is " + now.Format("2006-01-02") + ". Use it to resolve dates that omit the year.\n\n")

	writeCategories(&b, categories)

	b.WriteString("TYPE RULES:\n")
	b.WriteString("1. Money received (salary, incoming transfers, refunds, top-ups) is \"Receita\".\n")
	b.WriteString("2. Money spent or sent to someone else is \"Despesa\". \"Para <name>\" is outbound.\n")
	b.WriteString("3. Transfers into a savings vault, pot or sub-account are \"Poupança\".\n")
	b.WriteString("4. Purchases of funds, ETFs, shares or crypto are \"Investimento\".\n\n")

	b.WriteString("EXTRACTION RULES:\n")
	b.WriteString("1. Report every movement. There is no minimum amount.\n")
	b.WriteString("2. Skip running balances, opening and closing balances, headers and page footers.\n")
	b.WriteString("3. Amounts are absolute values. The type carries the direction.\n")
	b.WriteString("4. Movements inside savings vaults or term deposits that are not on the main account are skipped.\n")
	b.WriteString("5. Dates use the format YYYY-MM-DD.\n\n")

	b.WriteString("Return a JSON array of objects with date, description, amount, type and category.\n\n")
	b.WriteString("STATEMENT:\n")
	b.WriteString(text)
	return b.String()
}

func buildReceiptPrompt(now time.Time, categories []string) string {
	var b strings.Builder
	b.WriteString("Read the attached receipt and report its total as a single transaction.\n")
	b.WriteString("Today is " + now.Format("2006-01-02") + ". Omit the date if it is not printed.\n\n")

	writeCategories(&b, categories)

	b.WriteString("Use type \"Despesa\" for purchases and \"Receita\" only for refunds.\n")
	b.WriteString("Return a JSON object with description, amount, date, category and type.\n")
	return b.String()
}
