package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/client"
	"github.com/simonvc/ledgercore/internal/ledger"
	"github.com/spf13/cobra"
)

var journalCmd = &cobra.Command{
	Use:     "journal",
	Aliases: []string{"je"},
	Short:   "Post and inspect journal entries",
}

// lineSpec is one --line flag before the account reference is resolved.
type lineSpec struct {
	account string
	debit   bool
	amount  decimal.Decimal
}

// parseLineSpec reads ACCOUNT:dr|cr:AMOUNT. ACCOUNT is an account code or id.
func parseLineSpec(s string) (lineSpec, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return lineSpec{}, fmt.Errorf("line %q: want ACCOUNT:dr|cr:AMOUNT", s)
	}
	ls := lineSpec{account: strings.TrimSpace(parts[0])}
	if ls.account == "" {
		return lineSpec{}, fmt.Errorf("line %q: missing account", s)
	}
	switch strings.ToLower(strings.TrimSpace(parts[1])) {
	case "dr", "debit":
		ls.debit = true
	case "cr", "credit":
	default:
		return lineSpec{}, fmt.Errorf("line %q: side must be dr or cr", s)
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(parts[2]))
	if err != nil {
		return lineSpec{}, fmt.Errorf("line %q: invalid amount: %w", s, err)
	}
	if !amt.IsPositive() {
		return lineSpec{}, fmt.Errorf("line %q: amount must be positive", s)
	}
	ls.amount = amt
	return ls, nil
}

// buildLines turns line specs into journal lines, looking codes up in accounts.
// References that match no code are passed through as account ids.
func buildLines(specs []lineSpec, accounts []ledger.Account) []ledger.NewJournalLine {
	byCode := make(map[string]string, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a.ID
	}
	lines := make([]ledger.NewJournalLine, 0, len(specs))
	for _, s := range specs {
		id, ok := byCode[s.account]
		if !ok {
			id = s.account
		}
		l := ledger.NewJournalLine{AccountID: id}
		if s.debit {
			l.Debit = s.amount
		} else {
			l.Credit = s.amount
		}
		lines = append(lines, l)
	}
	return lines
}

var (
	postEntity      entityFlags
	postDate        string
	postDescription string
	postReference   string
	postCurrency    string
	postType        string
	postCreatedBy   string
	postLines       []string
)

var journalPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a balanced journal entry",
	Example: `  ledgercore journal post --scope company:acme --date 2024-01-05 \
    --description "Owner capital" --line 1100:dr:10000 --line 3000:cr:10000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := newClient()
		entityID, err := postEntity.resolve(ctx, c, true)
		if err != nil {
			return err
		}
		date, err := journalDate(postDate)
		if err != nil {
			return err
		}
		specs := make([]lineSpec, 0, len(postLines))
		for _, raw := range postLines {
			ls, err := parseLineSpec(raw)
			if err != nil {
				return err
			}
			specs = append(specs, ls)
		}
		accounts, err := c.ListAccounts(ctx, entityID, true)
		if err != nil {
			return err
		}

		j, err := c.PostJournal(ctx, ledger.NewJournal{
			EntityID:    entityID,
			JournalType: postType,
			Date:        date,
			Description: postDescription,
			Reference:   postReference,
			Currency:    strings.ToUpper(postCurrency),
			CreatedBy:   postCreatedBy,
			Lines:       buildLines(specs, accounts),
		})
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Journal posted: " + j.JournalNo))
		fmt.Println()
		printJournal(j)
		return nil
	},
}

var (
	listEntity entityFlags
	listFrom   string
	listTo     string
	listLimit  int
)

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journals, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		entityID, err := listEntity.resolve(cmd.Context(), c, false)
		if err != nil {
			return err
		}
		from, err := parseDateFlag("from", listFrom)
		if err != nil {
			return err
		}
		to, err := parseDateFlag("to", listTo)
		if err != nil {
			return err
		}
		journals, err := c.ListJournals(cmd.Context(), ledger.JournalFilter{
			EntityID: entityID,
			From:     from,
			To:       to,
			Limit:    listLimit,
		})
		if err != nil {
			return err
		}
		printJournals(journals)
		return nil
	},
}

var journalGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a journal and its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := newClient().GetJournal(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printJournal(j)
		return nil
	},
}

var (
	reverseDate        string
	reverseDescription string
)

var journalReverseCmd = &cobra.Command{
	Use:   "reverse <id>",
	Short: "Post a journal that cancels another",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDateFlag("date", reverseDate)
		if err != nil {
			return err
		}
		j, err := newClient().Reverse(cmd.Context(), args[0], date, reverseDescription)
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Reversal posted: " + j.JournalNo))
		fmt.Println()
		printJournal(j)
		return nil
	},
}

var (
	templateEntity      entityFlags
	templateName        string
	templateAmount      string
	templateDate        string
	templateDescription string
	templateReference   string
)

var journalTemplateCmd = &cobra.Command{
	Use:   "template",
	Short: "Post a journal from a named template",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		c := newClient()
		entityID, err := templateEntity.resolve(ctx, c, true)
		if err != nil {
			return err
		}
		amt, err := decimal.NewFromString(templateAmount)
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		date, err := journalDate(templateDate)
		if err != nil {
			return err
		}
		j, err := c.PostTemplate(ctx, client.TemplateRequest{
			EntityID:    entityID,
			Template:    templateName,
			Amount:      amt,
			Date:        date,
			Description: templateDescription,
			Reference:   templateReference,
		})
		if err != nil {
			return err
		}
		fmt.Println(successStyle.Render("Journal posted: " + j.JournalNo))
		fmt.Println()
		printJournal(j)
		return nil
	},
}

var journalTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List journal templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listTemplates(cmd.Context(), newClient())
	},
}

func listTemplates(ctx context.Context, c *client.Client) error {
	templates, err := c.ListTemplates(ctx)
	if err != nil {
		return err
	}
	for _, t := range templates {
		fmt.Println(sectionStyle.Render(t.Name))
		fmt.Println("  " + dimStyle.Render(t.Description))
		for _, l := range t.Lines {
			side := creditStyle.Render("cr")
			if l.IsDebit {
				side = debitStyle.Render("dr")
			}
			fmt.Printf("    %s %-6s %s\n", side, l.StandardCode, l.Role)
		}
		fmt.Println()
	}
	return nil
}

// journalDate parses a posting date, defaulting to today.
func journalDate(s string) (ledger.Date, error) {
	if s == "" {
		return ledger.Today(), nil
	}
	return parseDateFlag("date", s)
}

func init() {
	postEntity.register(journalPostCmd)
	journalPostCmd.Flags().StringVar(&postDate, "date", "", "Posting date YYYY-MM-DD (default today)")
	journalPostCmd.Flags().StringVarP(&postDescription, "description", "d", "", "Description")
	journalPostCmd.Flags().StringVar(&postReference, "reference", "", "External reference")
	journalPostCmd.Flags().StringVar(&postCurrency, "currency", "", "Currency (default the entity's base currency)")
	journalPostCmd.Flags().StringVar(&postType, "type", ledger.JournalTypeGeneral, "Journal type")
	journalPostCmd.Flags().StringVar(&postCreatedBy, "created-by", "", "Author recorded on the journal")
	journalPostCmd.Flags().StringArrayVarP(&postLines, "line", "l", nil, "ACCOUNT:dr|cr:AMOUNT (repeat)")
	journalPostCmd.MarkFlagRequired("line")

	listEntity.register(journalListCmd)
	journalListCmd.Flags().StringVar(&listFrom, "from", "", "First date YYYY-MM-DD")
	journalListCmd.Flags().StringVar(&listTo, "to", "", "Last date YYYY-MM-DD")
	journalListCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum journals to show")

	journalReverseCmd.Flags().StringVar(&reverseDate, "date", "", "Reversal date YYYY-MM-DD (default today)")
	journalReverseCmd.Flags().StringVarP(&reverseDescription, "description", "d", "", "Description")

	templateEntity.register(journalTemplateCmd)
	journalTemplateCmd.Flags().StringVar(&templateName, "name", "", "Template name")
	journalTemplateCmd.Flags().StringVar(&templateAmount, "amount", "", "Amount")
	journalTemplateCmd.Flags().StringVar(&templateDate, "date", "", "Posting date YYYY-MM-DD (default today)")
	journalTemplateCmd.Flags().StringVarP(&templateDescription, "description", "d", "", "Description")
	journalTemplateCmd.Flags().StringVar(&templateReference, "reference", "", "External reference")
	journalTemplateCmd.MarkFlagRequired("name")
	journalTemplateCmd.MarkFlagRequired("amount")

	journalCmd.AddCommand(journalPostCmd, journalListCmd, journalGetCmd, journalReverseCmd, journalTemplateCmd, journalTemplatesCmd)
	rootCmd.AddCommand(journalCmd)
}
