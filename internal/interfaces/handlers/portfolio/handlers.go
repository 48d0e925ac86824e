package portfolio

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"folio-backend/internal/application/marketdata"
	portfoliosvc "folio-backend/internal/application/portfolio"
	"folio-backend/internal/domain"
	"folio-backend/internal/pkg/response"
)

type Handlers struct {
	Service    *portfoliosvc.Service
	MarketData *marketdata.Service
}

// statusFromError maps ledger sentinel errors onto HTTP status codes.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidState):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrIllegalStateTransition):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrCurrencyMismatch),
		errors.Is(err, domain.ErrInsufficientHolding),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrDivideByZero):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	code := statusFromError(err)
	if code == fiber.StatusInternalServerError {
		return response.Error(c, "Internal Server Error", code, nil)
	}
	return response.Error(c, err.Error(), code, nil)
}

func parsePortfolioID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("portfolioID"))
}

// occurredAt reads an optional RFC3339 timestamp, defaulting to now.
func occurredAt(raw string) (time.Time, error) {
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339, raw)
}

type assetTradeBody struct {
	AssetIdentifier string `json:"asset_identifier"`
	Quantity        string `json:"quantity"`
	PricePerUnit    string `json:"price_per_unit"`
	Currency        string `json:"currency"`
	OccurredAt      string `json:"occurred_at"`
}

func (b assetTradeBody) parse() (string, domain.Quantity, domain.Money, time.Time, error) {
	if b.AssetIdentifier == "" || b.Quantity == "" || b.PricePerUnit == "" || b.Currency == "" {
		return "", domain.Quantity{}, domain.Money{}, time.Time{},
			errors.New("asset_identifier, quantity, price_per_unit and currency are required")
	}
	qty, err := decimal.NewFromString(b.Quantity)
	if err != nil {
		return "", domain.Quantity{}, domain.Money{}, time.Time{}, errors.New("invalid quantity")
	}
	price, err := decimal.NewFromString(b.PricePerUnit)
	if err != nil {
		return "", domain.Quantity{}, domain.Money{}, time.Time{}, errors.New("invalid price_per_unit")
	}
	money, err := domain.NewMoney(price, b.Currency)
	if err != nil {
		return "", domain.Quantity{}, domain.Money{}, time.Time{}, err
	}
	at, err := occurredAt(b.OccurredAt)
	if err != nil {
		return "", domain.Quantity{}, domain.Money{}, time.Time{}, errors.New("invalid occurred_at")
	}
	return b.AssetIdentifier, domain.NewQuantity(qty), money, at, nil
}

func holdingView(h *domain.PositionHolding) fiber.Map {
	return fiber.Map{
		"id":                  h.ID,
		"portfolio_id":        h.PortfolioID,
		"asset_identifier":    h.AssetIdentifier,
		"total_quantity":      h.TotalQuantity,
		"average_cost_basis":  h.AverageCostBasis,
		"total_cost_basis":    h.TotalCostBasis,
		"last_transaction_at": h.LastTransactionAt,
		"version":             h.Version,
	}
}

func transactionView(t *domain.Transaction) fiber.Map {
	return fiber.Map{
		"id":                      t.ID,
		"portfolio_id":            t.PortfolioID,
		"correlation_id":          t.CorrelationID,
		"parent_transaction_id":   t.ParentTransactionID,
		"reversal_transaction_id": t.ReversalTransactionID,
		"category":                t.Category(),
		"details":                 t.Details,
		"net_amount":              t.NetAmount,
		"status":                  t.Status,
		"hidden":                  t.Hidden,
		"created_at":              t.CreatedAt,
	}
}

func liabilityView(l *domain.Liability) fiber.Map {
	return fiber.Map{
		"id":                         l.ID,
		"portfolio_id":               l.PortfolioID,
		"name":                       l.Name,
		"current_balance":            l.CurrentBalance,
		"annual_interest_rate":       l.AnnualInterestRate.Ratio(),
		"last_interest_accrual_date": l.LastInterestAccrualDate,
		"version":                    l.Version,
	}
}

// RecordPurchase POST /api/v1/portfolios/:portfolioID/purchases
func (h *Handlers) RecordPurchase(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body assetTradeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	asset, qty, price, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tr, holding, err := h.Service.RecordPurchase(c.Context(), portfolioID, asset, qty, price, at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Purchase recorded", fiber.Map{
		"transaction": transactionView(tr),
		"holding":     holdingView(holding),
	}, nil)
}

// RecordSale POST /api/v1/portfolios/:portfolioID/sales
func (h *Handlers) RecordSale(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body assetTradeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	asset, qty, price, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tr, holding, err := h.Service.RecordSale(c.Context(), portfolioID, asset, qty, price, at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Sale recorded", fiber.Map{
		"transaction": transactionView(tr),
		"holding":     holdingView(holding),
	}, nil)
}

// RecordDividendReinvestment POST /api/v1/portfolios/:portfolioID/dividend-reinvestments
func (h *Handlers) RecordDividendReinvestment(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body assetTradeBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	asset, shares, price, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tr, holding, err := h.Service.RecordDividendReinvestment(c.Context(), portfolioID, asset, shares, price, at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Dividend reinvestment recorded", fiber.Map{
		"transaction": transactionView(tr),
		"holding":     holdingView(holding),
	}, nil)
}

// RecordReturnOfCapital POST /api/v1/portfolios/:portfolioID/return-of-capital
func (h *Handlers) RecordReturnOfCapital(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body struct {
		AssetIdentifier string `json:"asset_identifier"`
		Amount          string `json:"amount"`
		Currency        string `json:"currency"`
		OccurredAt      string `json:"occurred_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.AssetIdentifier == "" || body.Amount == "" || body.Currency == "" {
		return response.Error(c, "asset_identifier, amount and currency are required", 400, nil)
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil {
		return response.Error(c, "invalid amount", 400, nil)
	}
	money, err := domain.NewMoney(amount, body.Currency)
	if err != nil {
		return fail(c, err)
	}
	at, err := occurredAt(body.OccurredAt)
	if err != nil {
		return response.Error(c, "invalid occurred_at", 400, nil)
	}

	tr, holding, err := h.Service.RecordReturnOfCapital(c.Context(), portfolioID, body.AssetIdentifier, money, at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Return of capital recorded", fiber.Map{
		"transaction": transactionView(tr),
		"holding":     holdingView(holding),
	}, nil)
}

// RecordSplit POST /api/v1/portfolios/:portfolioID/splits
func (h *Handlers) RecordSplit(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body struct {
		AssetIdentifier string `json:"asset_identifier"`
		Ratio           string `json:"ratio"`
		OccurredAt      string `json:"occurred_at"`
	}
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.AssetIdentifier == "" || body.Ratio == "" {
		return response.Error(c, "asset_identifier and ratio are required", 400, nil)
	}
	ratio, err := decimal.NewFromString(body.Ratio)
	if err != nil {
		return response.Error(c, "invalid ratio", 400, nil)
	}
	at, err := occurredAt(body.OccurredAt)
	if err != nil {
		return response.Error(c, "invalid occurred_at", 400, nil)
	}

	tr, holding, err := h.Service.RecordSplit(c.Context(), portfolioID, body.AssetIdentifier, ratio, at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Split recorded", fiber.Map{
		"transaction": transactionView(tr),
		"holding":     holdingView(holding),
	}, nil)
}

// PreviewCapitalGain GET /api/v1/portfolios/:portfolioID/capital-gain-preview
func (h *Handlers) PreviewCapitalGain(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	asset := c.Query("asset_identifier")
	qtyRaw := c.Query("quantity")
	priceRaw := c.Query("price_per_unit")
	currency := c.Query("currency")
	if asset == "" || qtyRaw == "" || priceRaw == "" || currency == "" {
		return response.Error(c, "asset_identifier, quantity, price_per_unit and currency are required", 400, nil)
	}
	qty, err := decimal.NewFromString(qtyRaw)
	if err != nil {
		return response.Error(c, "invalid quantity", 400, nil)
	}
	price, err := decimal.NewFromString(priceRaw)
	if err != nil {
		return response.Error(c, "invalid price_per_unit", 400, nil)
	}
	money, err := domain.NewMoney(price, currency)
	if err != nil {
		return fail(c, err)
	}

	gain, err := h.Service.PreviewCapitalGain(c.Context(), portfolioID, asset, domain.NewQuantity(qty), money)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Capital gain preview", fiber.Map{
		"asset_identifier":   asset,
		"quantity":           qtyRaw,
		"price_per_unit":     money,
		"realized_gain_loss": gain,
	}, nil)
}

type cashBody struct {
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	Note       string `json:"note"`
	OccurredAt string `json:"occurred_at"`
}

func (b cashBody) parse() (domain.Money, time.Time, error) {
	if b.Amount == "" || b.Currency == "" {
		return domain.Money{}, time.Time{}, errors.New("amount and currency are required")
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return domain.Money{}, time.Time{}, errors.New("invalid amount")
	}
	money, err := domain.NewMoney(amount, b.Currency)
	if err != nil {
		return domain.Money{}, time.Time{}, err
	}
	at, err := occurredAt(b.OccurredAt)
	if err != nil {
		return domain.Money{}, time.Time{}, errors.New("invalid occurred_at")
	}
	return money, at, nil
}

// RecordCashDeposit POST /api/v1/portfolios/:portfolioID/cash/deposits
func (h *Handlers) RecordCashDeposit(c *fiber.Ctx) error {
	return h.recordCash(c, true)
}

// RecordCashWithdrawal POST /api/v1/portfolios/:portfolioID/cash/withdrawals
func (h *Handlers) RecordCashWithdrawal(c *fiber.Ctx) error {
	return h.recordCash(c, false)
}

func (h *Handlers) recordCash(c *fiber.Ctx, deposit bool) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body cashBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	money, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	var tr *domain.Transaction
	if deposit {
		tr, err = h.Service.RecordCashDeposit(c.Context(), portfolioID, money, body.Note, at)
	} else {
		tr, err = h.Service.RecordCashWithdrawal(c.Context(), portfolioID, money, body.Note, at)
	}
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Cash flow recorded", fiber.Map{
		"transaction": transactionView(tr),
	}, nil)
}

// ListHoldings GET /api/v1/portfolios/:portfolioID/holdings
func (h *Handlers) ListHoldings(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	holdings, err := h.Service.ListHoldings(c.Context(), portfolioID)
	if err != nil {
		return fail(c, err)
	}
	views := make([]fiber.Map, 0, len(holdings))
	for _, holding := range holdings {
		views = append(views, holdingView(holding))
	}
	return response.Success(c, "Holdings", fiber.Map{"holdings": views}, nil)
}

// GetHolding GET /api/v1/portfolios/:portfolioID/holding?asset_identifier=...
// The asset identifier rides in the query string: identifiers like
// "NASDAQ:AAPL" do not survive as path segments.
func (h *Handlers) GetHolding(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	asset := c.Query("asset_identifier")
	if asset == "" {
		return response.Error(c, "asset_identifier is required", 400, nil)
	}
	holding, err := h.Service.GetHolding(c.Context(), portfolioID, asset)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Holding", holdingView(holding), nil)
}

// GetHoldingValuation GET /api/v1/portfolios/:portfolioID/holding/valuation?asset_identifier=...
func (h *Handlers) GetHoldingValuation(c *fiber.Ctx) error {
	if h.MarketData == nil {
		return response.Error(c, "Market data not configured", 501, nil)
	}
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	asset := c.Query("asset_identifier")
	if asset == "" {
		return response.Error(c, "asset_identifier is required", 400, nil)
	}
	holding, err := h.Service.GetHolding(c.Context(), portfolioID, asset)
	if err != nil {
		return fail(c, err)
	}
	valuation, err := h.MarketData.Value(c.Context(), holding)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Holding valuation", valuation, nil)
}

// ListTransactions GET /api/v1/portfolios/:portfolioID/transactions?include_hidden=true
func (h *Handlers) ListTransactions(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	includeHidden := c.QueryBool("include_hidden", false)

	transactions, err := h.Service.ListTransactions(c.Context(), portfolioID, includeHidden)
	if err != nil {
		return fail(c, err)
	}
	views := make([]fiber.Map, 0, len(transactions))
	for _, tr := range transactions {
		views = append(views, transactionView(tr))
	}
	return response.Success(c, "Transactions", fiber.Map{"transactions": views}, nil)
}

type correctionBody struct {
	Reason string `json:"reason"`
}

// VoidTransaction POST /api/v1/transactions/:transactionID/void
func (h *Handlers) VoidTransaction(c *fiber.Ctx) error {
	return h.correct(c, h.Service.VoidTransaction, "Transaction voided")
}

// ReverseTransaction POST /api/v1/transactions/:transactionID/reverse
func (h *Handlers) ReverseTransaction(c *fiber.Ctx) error {
	return h.correct(c, h.Service.ReverseTransaction, "Transaction reversed")
}

func (h *Handlers) correct(c *fiber.Ctx, apply func(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*domain.Transaction, error), message string) error {
	transactionID, err := uuid.Parse(c.Params("transactionID"))
	if err != nil {
		return response.Error(c, "Invalid transaction id", 400, nil)
	}
	var body correctionBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}

	reversal, err := apply(c.Context(), transactionID, body.Reason, time.Now().UTC())
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, message, fiber.Map{
		"reversal": transactionView(reversal),
	}, nil)
}

type liabilityBody struct {
	Name               string `json:"name"`
	InitialBalance     string `json:"initial_balance"`
	Currency           string `json:"currency"`
	AnnualInterestRate string `json:"annual_interest_rate"`
	OccurredAt         string `json:"occurred_at"`
}

// CreateLiability POST /api/v1/portfolios/:portfolioID/liabilities
func (h *Handlers) CreateLiability(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	var body liabilityBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	if body.Name == "" || body.InitialBalance == "" || body.Currency == "" || body.AnnualInterestRate == "" {
		return response.Error(c, "name, initial_balance, currency and annual_interest_rate are required", 400, nil)
	}
	balanceRaw, err := decimal.NewFromString(body.InitialBalance)
	if err != nil {
		return response.Error(c, "invalid initial_balance", 400, nil)
	}
	balance, err := domain.NewMoney(balanceRaw, body.Currency)
	if err != nil {
		return fail(c, err)
	}
	rate, err := decimal.NewFromString(body.AnnualInterestRate)
	if err != nil {
		return response.Error(c, "invalid annual_interest_rate", 400, nil)
	}
	at, err := occurredAt(body.OccurredAt)
	if err != nil {
		return response.Error(c, "invalid occurred_at", 400, nil)
	}

	liability, tr, err := h.Service.CreateLiability(c.Context(), portfolioID, body.Name, balance, domain.NewPercentage(rate), at)
	if err != nil {
		return fail(c, err)
	}
	return response.SuccessCreated(c, "Liability created", fiber.Map{
		"liability":   liabilityView(liability),
		"transaction": transactionView(tr),
	}, nil)
}

// ListLiabilities GET /api/v1/portfolios/:portfolioID/liabilities
func (h *Handlers) ListLiabilities(c *fiber.Ctx) error {
	portfolioID, err := parsePortfolioID(c)
	if err != nil {
		return response.Error(c, "Invalid portfolio id", 400, nil)
	}
	liabilities, err := h.Service.ListLiabilities(c.Context(), portfolioID)
	if err != nil {
		return fail(c, err)
	}
	views := make([]fiber.Map, 0, len(liabilities))
	for _, l := range liabilities {
		views = append(views, liabilityView(l))
	}
	return response.Success(c, "Liabilities", fiber.Map{"liabilities": views}, nil)
}

type liabilityAmountBody struct {
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	OccurredAt string `json:"occurred_at"`
}

func (b liabilityAmountBody) parse() (domain.Money, time.Time, error) {
	if b.Amount == "" || b.Currency == "" {
		return domain.Money{}, time.Time{}, errors.New("amount and currency are required")
	}
	amount, err := decimal.NewFromString(b.Amount)
	if err != nil {
		return domain.Money{}, time.Time{}, errors.New("invalid amount")
	}
	money, err := domain.NewMoney(amount, b.Currency)
	if err != nil {
		return domain.Money{}, time.Time{}, err
	}
	at, err := occurredAt(b.OccurredAt)
	if err != nil {
		return domain.Money{}, time.Time{}, errors.New("invalid occurred_at")
	}
	return money, at, nil
}

// RecordLiabilityPayment POST /api/v1/liabilities/:liabilityID/payments
func (h *Handlers) RecordLiabilityPayment(c *fiber.Ctx) error {
	liabilityID, err := uuid.Parse(c.Params("liabilityID"))
	if err != nil {
		return response.Error(c, "Invalid liability id", 400, nil)
	}
	var body liabilityAmountBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	money, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tr, liability, err := h.Service.RecordLiabilityPayment(c.Context(), liabilityID, money, at)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Payment recorded", fiber.Map{
		"transaction": transactionView(tr),
		"liability":   liabilityView(liability),
	}, nil)
}

// IncreaseLiabilityBalance POST /api/v1/liabilities/:liabilityID/draws
func (h *Handlers) IncreaseLiabilityBalance(c *fiber.Ctx) error {
	liabilityID, err := uuid.Parse(c.Params("liabilityID"))
	if err != nil {
		return response.Error(c, "Invalid liability id", 400, nil)
	}
	var body liabilityAmountBody
	if err := c.BodyParser(&body); err != nil {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	money, at, err := body.parse()
	if err != nil {
		return response.Error(c, err.Error(), 400, nil)
	}

	tr, liability, err := h.Service.IncreaseLiabilityBalance(c.Context(), liabilityID, money, at)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Draw recorded", fiber.Map{
		"transaction": transactionView(tr),
		"liability":   liabilityView(liability),
	}, nil)
}

// AccrueLiabilityInterest POST /api/v1/liabilities/:liabilityID/accrue-interest
func (h *Handlers) AccrueLiabilityInterest(c *fiber.Ctx) error {
	liabilityID, err := uuid.Parse(c.Params("liabilityID"))
	if err != nil {
		return response.Error(c, "Invalid liability id", 400, nil)
	}
	var body struct {
		AsOf string `json:"as_of"`
	}
	if err := c.BodyParser(&body); err != nil && len(c.Body()) > 0 {
		return response.Error(c, "Invalid request body", 400, nil)
	}
	asOf, err := occurredAt(body.AsOf)
	if err != nil {
		return response.Error(c, "invalid as_of", 400, nil)
	}

	tr, liability, err := h.Service.AccrueLiabilityInterest(c.Context(), liabilityID, asOf)
	if err != nil {
		return fail(c, err)
	}
	data := fiber.Map{"liability": liabilityView(liability)}
	if tr != nil {
		data["transaction"] = transactionView(tr)
	}
	return response.Success(c, "Interest accrued", data, nil)
}

// GetLiability GET /api/v1/liabilities/:liabilityID
func (h *Handlers) GetLiability(c *fiber.Ctx) error {
	liabilityID, err := uuid.Parse(c.Params("liabilityID"))
	if err != nil {
		return response.Error(c, "Invalid liability id", 400, nil)
	}
	liability, err := h.Service.GetLiability(c.Context(), liabilityID)
	if err != nil {
		return fail(c, err)
	}
	return response.Success(c, "Liability", liabilityView(liability), nil)
}
