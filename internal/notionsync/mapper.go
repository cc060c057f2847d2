package notionsync

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"
)

// Property names of the mirrored transactions database.
const (
	PropDescription   = "Description"
	PropTransactionID = "Transaction ID"
	PropDate          = "Date"
	PropAmount        = "Amount"
	PropType          = "Type"
	PropCategory      = "Category"
	PropMember        = "Member"
)

var amountTolerance = decimal.RequireFromString("0.005")

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{
				Content: s,
			},
		},
	}
}

func notionDate(d civil.Date) *notionapi.Date {
	nd := notionapi.Date(time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC))
	return &nd
}

// TransactionToNotionProperties converts a transaction to the page properties of
// the mirror database.
func TransactionToNotionProperties(tx domain.Transaction) notionapi.Properties {
	amount, _ := tx.Amount.Round(2).Float64()

	props := notionapi.Properties{
		PropDescription: notionapi.TitleProperty{
			Title: richText(tx.Description),
		},
		PropTransactionID: notionapi.RichTextProperty{
			RichText: richText(tx.ID),
		},
		PropDate: notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: notionDate(tx.Date),
			},
		},
		PropAmount: notionapi.NumberProperty{
			Number: amount,
		},
		PropType: notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Type),
			},
		},
		PropMember: notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: string(tx.Member),
			},
		},
	}

	if tx.Category != "" {
		props[PropCategory] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	return props
}

// pageMirrors reports whether page already shows tx as it is now.
func pageMirrors(page notionapi.Page, tx domain.Transaction) bool {
	if titleText(page, PropDescription) != tx.Description {
		return false
	}
	if selectName(page, PropType) != string(tx.Type) ||
		selectName(page, PropCategory) != tx.Category ||
		selectName(page, PropMember) != string(tx.Member) {
		return false
	}

	d, ok := pageDate(page)
	if !ok || d != tx.Date {
		return false
	}

	n, ok := page.Properties[PropAmount].(*notionapi.NumberProperty)
	if !ok {
		return false
	}
	return decimal.NewFromFloat(n.Number).Sub(tx.Amount).Abs().LessThan(amountTolerance)
}

func titleText(page notionapi.Page, name string) string {
	if title, ok := page.Properties[name].(*notionapi.TitleProperty); ok && len(title.Title) > 0 {
		return title.Title[0].PlainText
	}
	return ""
}

func selectName(page notionapi.Page, name string) string {
	if sel, ok := page.Properties[name].(*notionapi.SelectProperty); ok {
		return sel.Select.Name
	}
	return ""
}

func pageDate(page notionapi.Page) (civil.Date, bool) {
	prop, ok := page.Properties[PropDate].(*notionapi.DateProperty)
	if !ok || prop.Date == nil || prop.Date.Start == nil {
		return civil.Date{}, false
	}
	return civil.DateOf(time.Time(*prop.Date.Start)), true
}

// extractTransactionID extracts the transaction ID from a Notion page's properties.
// Returns empty string if not found.
func extractTransactionID(page notionapi.Page) string {
	if richText, ok := page.Properties[PropTransactionID].(*notionapi.RichTextProperty); ok {
		if len(richText.RichText) > 0 {
			return richText.RichText[0].PlainText
		}
	}
	return ""
}
