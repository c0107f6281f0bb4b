package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simonvc/ledgercore/internal/ledger"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is an error response from the server. It unwraps to the ledger
// error kind, so errors.Is(err, ledger.ErrNotFound) works across the wire.
type APIError struct {
	Status    int               `json:"-"`
	Message   string            `json:"error"`
	Kind      ledger.Kind       `json:"kind"`
	Line      int               `json:"line,omitempty"`
	AccountID string            `json:"account_id,omitempty"`
	Field     string            `json:"field,omitempty"`
	Details   map[string]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error (%d): %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Kind {
	case ledger.KindValidation:
		return ledger.ErrValidation
	case ledger.KindNotFound:
		return ledger.ErrNotFound
	case ledger.KindConflict:
		return ledger.ErrConflict
	case ledger.KindUnauthorized:
		return ledger.ErrUnauthorized
	case ledger.KindStorage:
		return ledger.ErrStorage
	default:
		return nil
	}
}

// Entities and charts

func scopeBody(scope ledger.Scope) map[string]string {
	return map[string]string{"scope": string(scope.Kind()), "company_id": scope.CompanyID()}
}

func (c *Client) ResolveEntity(ctx context.Context, scope ledger.Scope) (*ledger.Entity, error) {
	var result ledger.Entity
	if err := c.post(ctx, "/api/v1/entities/resolve", scopeBody(scope), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListEntities(ctx context.Context) ([]ledger.Entity, error) {
	var result []ledger.Entity
	if err := c.get(ctx, "/api/v1/entities", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ImportChart(ctx context.Context, scope ledger.Scope) ([]ledger.Account, error) {
	var result []ledger.Account
	if err := c.post(ctx, "/api/v1/charts/import", scopeBody(scope), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListStandardAccounts(ctx context.Context) ([]ledger.StandardAccount, error) {
	var result []ledger.StandardAccount
	if err := c.get(ctx, "/api/v1/standard-accounts", &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) ListTemplates(ctx context.Context) ([]ledger.Template, error) {
	var result []ledger.Template
	if err := c.get(ctx, "/api/v1/templates", &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Accounts

func (c *Client) ListAccounts(ctx context.Context, entityID string, includeInactive bool) ([]ledger.Account, error) {
	params := url.Values{}
	if includeInactive {
		params.Set("include_inactive", "true")
	}
	var result []ledger.Account
	if err := c.get(ctx, "/api/v1/entities/"+url.PathEscape(entityID)+"/accounts?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CreateAccount(ctx context.Context, na ledger.NewAccount) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.post(ctx, "/api/v1/entities/"+url.PathEscape(na.EntityID)+"/accounts", na, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetAccount(ctx context.Context, id string) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.get(ctx, "/api/v1/accounts/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MapAccountToStandard sets the rollup target; a nil id clears it.
func (c *Client) MapAccountToStandard(ctx context.Context, accountID string, standardID *string) (*ledger.Account, error) {
	var result ledger.Account
	body := map[string]*string{"standard_account_id": standardID}
	if err := c.put(ctx, "/api/v1/accounts/"+url.PathEscape(accountID)+"/standard", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SetAccountActive(ctx context.Context, accountID string, active bool) (*ledger.Account, error) {
	var result ledger.Account
	if err := c.put(ctx, "/api/v1/accounts/"+url.PathEscape(accountID)+"/active", map[string]bool{"active": active}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Policies

func policiesPath(entityID string) string {
	return "/api/v1/entities/" + url.PathEscape(entityID) + "/policies"
}

func (c *Client) ListPolicies(ctx context.Context, entityID string) ([]ledger.AccountPolicy, error) {
	var result []ledger.AccountPolicy
	if err := c.get(ctx, policiesPath(entityID), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) CodePolicies(ctx context.Context, entityID, code string) (*ledger.CodePolicies, error) {
	var result ledger.CodePolicies
	if err := c.get(ctx, policiesPath(entityID)+"/"+url.PathEscape(code), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SetPolicy(ctx context.Context, p ledger.AccountPolicy) error {
	path := policiesPath(p.EntityID) + "/" + url.PathEscape(p.Code) + "/" + url.PathEscape(string(p.Policy))
	return c.put(ctx, path, map[string]string{"value": p.Value}, nil)
}

func (c *Client) DeletePolicy(ctx context.Context, entityID, code string, name ledger.PolicyName) error {
	return c.del(ctx, policiesPath(entityID)+"/"+url.PathEscape(code)+"/"+url.PathEscape(string(name)))
}

// Settings

func settingsPath(entityID string) string {
	return "/api/v1/entities/" + url.PathEscape(entityID) + "/settings"
}

func (c *Client) EntitySettings(ctx context.Context, entityID string) (*ledger.EntitySettings, error) {
	var result ledger.EntitySettings
	if err := c.get(ctx, settingsPath(entityID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetEntitySettings replaces every control account of es.EntityID.
func (c *Client) SetEntitySettings(ctx context.Context, es ledger.EntitySettings) (*ledger.EntitySettings, error) {
	var result ledger.EntitySettings
	if err := c.put(ctx, settingsPath(es.EntityID), es, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Journals

func (c *Client) PostJournal(ctx context.Context, nj ledger.NewJournal) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.post(ctx, "/api/v1/journals", nj, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListJournals(ctx context.Context, f ledger.JournalFilter) ([]ledger.Journal, error) {
	params := query("entity_id", f.EntityID, "from", f.From.String(), "to", f.To.String())
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		params.Set("offset", strconv.Itoa(f.Offset))
	}
	var result []ledger.Journal
	if err := c.get(ctx, "/api/v1/journals?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) GetJournal(ctx context.Context, id string) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.get(ctx, "/api/v1/journals/"+url.PathEscape(id), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reverse posts the reversal of journal id. A zero date lets the server use today.
func (c *Client) Reverse(ctx context.Context, id string, date ledger.Date, description string) (*ledger.Journal, error) {
	body := map[string]string{"date": date.String(), "description": description}
	var result ledger.Journal
	if err := c.post(ctx, "/api/v1/journals/"+url.PathEscape(id)+"/reverse", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type TemplateRequest struct {
	EntityID    string          `json:"entity_id"`
	Template    string          `json:"template"`
	Amount      decimal.Decimal `json:"amount"`
	Date        ledger.Date     `json:"date"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

func (c *Client) PostTemplate(ctx context.Context, req TemplateRequest) (*ledger.Journal, error) {
	var result ledger.Journal
	if err := c.post(ctx, "/api/v1/journals/template", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reports

func (c *Client) TrialBalance(ctx context.Context, q ledger.TrialBalanceQuery) (*ledger.TrialBalance, error) {
	var result ledger.TrialBalance
	if err := c.get(ctx, "/api/v1/reports/trial-balance?"+trialBalanceQuery(q).Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BalanceSheet(ctx context.Context, q ledger.BalanceSheetQuery) (*ledger.BalanceSheet, error) {
	var result ledger.BalanceSheet
	if err := c.get(ctx, "/api/v1/reports/balance-sheet?"+balanceSheetQuery(q).Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) CashFlow(ctx context.Context, q ledger.CashFlowQuery) (*ledger.CashFlow, error) {
	params := query("entity_id", q.EntityID, "from", q.From.String(), "to", q.To.String())
	var result ledger.CashFlow
	if err := c.get(ctx, "/api/v1/reports/cash-flow?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ProfitAndLoss(ctx context.Context, q ledger.PeriodQuery) (*ledger.ProfitAndLoss, error) {
	params := query("entity_id", q.EntityID, "from", q.From.String(), "to", q.To.String())
	var result ledger.ProfitAndLoss
	if err := c.get(ctx, "/api/v1/reports/profit-and-loss?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) AccountStatement(ctx context.Context, q ledger.StatementQuery) (*ledger.AccountStatement, error) {
	params := query("entity_id", q.EntityID, "account_code", q.AccountCode, "from", q.From.String(), "to", q.To.String())
	var result ledger.AccountStatement
	if err := c.get(ctx, "/api/v1/reports/account-statement?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Summary(ctx context.Context, q ledger.SummaryQuery) (*ledger.Summary, error) {
	params := query("entity_id", q.EntityID)
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	var result ledger.Summary
	if err := c.get(ctx, "/api/v1/reports/summary?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ExportTrialBalance streams the trial balance workbook into w.
func (c *Client) ExportTrialBalance(ctx context.Context, q ledger.TrialBalanceQuery, w io.Writer) error {
	params := trialBalanceQuery(q)
	params.Set("format", "xlsx")
	return c.download(ctx, "/api/v1/reports/trial-balance?"+params.Encode(), w)
}

// ExportBalanceSheet streams the balance sheet workbook into w.
func (c *Client) ExportBalanceSheet(ctx context.Context, q ledger.BalanceSheetQuery, w io.Writer) error {
	params := balanceSheetQuery(q)
	params.Set("format", "xlsx")
	return c.download(ctx, "/api/v1/reports/balance-sheet?"+params.Encode(), w)
}

// Ping checks if the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.get(ctx, "/api/v1/templates", nil)
}

func trialBalanceQuery(q ledger.TrialBalanceQuery) url.Values {
	return query("entity_id", q.EntityID, "date_to", q.DateTo.String(), "branch_id", q.BranchID, "vendor_id", q.VendorID)
}

func balanceSheetQuery(q ledger.BalanceSheetQuery) url.Values {
	return query("entity_id", q.EntityID, "as_of", q.AsOf.String())
}

// query builds url.Values from key/value pairs, skipping empty values.
func query(kv ...string) url.Values {
	params := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			params.Set(kv[i], kv[i+1])
		}
	}
	return params
}

func (c *Client) get(ctx context.Context, path string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, result)
}

func (c *Client) del(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return c.doRequest(req, nil)
}

func (c *Client) post(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, http.MethodPost, path, body, result)
}

func (c *Client) put(ctx context.Context, path string, body any, result any) error {
	return c.send(ctx, http.MethodPut, path, body, result)
}

func (c *Client) send(ctx context.Context, method, path string, body any, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.doRequest(req, result)
}

func (c *Client) download(ctx context.Context, path string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return apiError(resp.StatusCode, body)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	return nil
}

func apiError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
		apiErr.Message = string(body)
	}
	return apiErr
}

func (c *Client) doRequest(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return apiError(resp.StatusCode, bodyBytes)
	}

	if result != nil && len(bodyBytes) > 0 {
		if err := json.Unmarshal(bodyBytes, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
