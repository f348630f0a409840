package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/chit"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/constants"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/output"
	"github.com/jagadeesanmuthuvel/chit-fund-analyzer/pkg/validation"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var validate = newRequestValidator()

// newRequestValidator reports field errors under their JSON names.
func newRequestValidator() *validator.Validate {
	v := validation.NewStructValidator()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// chitRequest describes a single chit. Amounts accept JSON numbers or
// numeric strings.
type chitRequest struct {
	TotalInstallments        int               `json:"total_installments" validate:"gte=1"`
	CurrentInstallmentNumber int               `json:"current_installment_number" validate:"gte=1"`
	FullChitValue            decimal.Decimal   `json:"full_chit_value" validate:"gt=0"`
	ChitFrequencyPerYear     int               `json:"chit_frequency_per_year" validate:"gte=1,lte=12"`
	PreviousInstallments     []decimal.Decimal `json:"previous_installments"`
	BidAmount                decimal.Decimal   `json:"bid_amount" validate:"gte=0"`
	WinnerInstallmentAmount  *decimal.Decimal  `json:"winner_installment_amount,omitempty"`
}

func (req chitRequest) toConfig() (chit.Config, error) {
	params := chit.ConfigParams{
		TotalInstallments:        req.TotalInstallments,
		CurrentInstallmentNumber: req.CurrentInstallmentNumber,
		FullChitValue:            req.FullChitValue,
		FrequencyPerYear:         req.ChitFrequencyPerYear,
		PreviousInstallments:     req.PreviousInstallments,
		BidAmount:                req.BidAmount,
	}
	if req.WinnerInstallmentAmount != nil {
		params.WinnerInstallmentAmount = decimal.NewNullDecimal(*req.WinnerInstallmentAmount)
	}
	return chit.NewConfig(params)
}

type analyzeRequest struct {
	chitRequest
	// CompareFrequencies re-runs the analysis at each listed frequency.
	CompareFrequencies []int `json:"compare_frequencies,omitempty" validate:"omitempty,dive,gte=1,lte=12"`
}

type sweepRequest struct {
	chitRequest
	MinBid decimal.Decimal `json:"min_bid" validate:"gte=0"`
	MaxBid decimal.Decimal `json:"max_bid" validate:"gte=0"`
	Count  int             `json:"count" validate:"gte=0"`
}

type compareRequest struct {
	ChitName             string            `json:"chit_name"`
	TotalInstallments    int               `json:"total_installments" validate:"gte=1"`
	FullChitValue        decimal.Decimal   `json:"full_chit_value" validate:"gt=0"`
	ChitFrequencyPerYear int               `json:"chit_frequency_per_year" validate:"gte=1,lte=12"`
	CurrentInstallment   int               `json:"current_installment" validate:"gte=1"`
	PreviousInstallments []decimal.Decimal `json:"previous_installments"`
	WinInstallment       int               `json:"win_installment" validate:"gte=1"`
	WinBidAmount         decimal.Decimal   `json:"win_bid_amount" validate:"gte=0"`
	LumpSumRate          float64           `json:"lump_sum_rate"`
	LateMinInstallment   decimal.Decimal   `json:"late_min_installment" validate:"gt=0"`
	LateMaxInstallment   decimal.Decimal   `json:"late_max_installment" validate:"gt=0"`
	SIPRate              float64           `json:"sip_rate"`
}

func (req compareRequest) toInput() chit.ComparisonInput {
	return chit.ComparisonInput{
		ChitName:           req.ChitName,
		TotalInstallments:  req.TotalInstallments,
		FullChitValue:      req.FullChitValue,
		FrequencyPerYear:   req.ChitFrequencyPerYear,
		CurrentInstallment: req.CurrentInstallment,
		PreviousAmounts:    req.PreviousInstallments,
		WinInstallment:     req.WinInstallment,
		WinBidAmount:       req.WinBidAmount,
		LumpSumRate:        req.LumpSumRate,
		LateMinInstallment: req.LateMinInstallment,
		LateMaxInstallment: req.LateMaxInstallment,
		SIPRate:            req.SIPRate,
	}
}

type analysisPayload struct {
	PrizeAmount           float64   `json:"prize_amount"`
	Cashflows             []float64 `json:"cashflows"`
	PeriodIRR             float64   `json:"period_irr"`
	AnnualIRR             float64   `json:"annual_irr"`
	TotalRepayment        float64   `json:"total_repayment"`
	NetInterestCost       float64   `json:"net_interest_cost"`
	EffectiveInterestRate float64   `json:"effective_interest_rate"`
	RemainingInstallments int       `json:"remaining_installments"`
	WinnerInstallment     float64   `json:"winner_installment"`
}

type frequencyPayload struct {
	FrequencyPerYear int     `json:"frequency_per_year"`
	BidAmount        float64 `json:"bid_amount"`
	PrizeAmount      float64 `json:"prize_amount"`
	PeriodIRR        float64 `json:"period_irr"`
	AnnualIRR        float64 `json:"annual_irr"`
}

type bidScenarioPayload struct {
	BidAmount   float64  `json:"bid_amount"`
	PrizeAmount float64  `json:"prize_amount"`
	AnnualIRR   float64  `json:"annual_irr"`
	PeriodIRR   *float64 `json:"period_irr,omitempty"`
}

type sweepSummaryPayload struct {
	Count     int                `json:"count"`
	MinIRR    float64            `json:"min_irr"`
	MaxIRR    float64            `json:"max_irr"`
	MeanIRR   float64            `json:"mean_irr"`
	MedianIRR float64            `json:"median_irr"`
	MinBid    float64            `json:"min_bid"`
	MaxBid    float64            `json:"max_bid"`
	MinPrize  float64            `json:"min_prize"`
	MaxPrize  float64            `json:"max_prize"`
	Cheapest  bidScenarioPayload `json:"cheapest"`
}

type scenarioPayload struct {
	Name               string                 `json:"name"`
	Cashflows          []float64              `json:"cashflows"`
	AnnualIRR          float64                `json:"annual_irr"`
	FinalAbsoluteValue float64                `json:"final_absolute_value"`
	TotalInvested      float64                `json:"total_invested"`
	NetGain            float64                `json:"net_gain"`
	Details            map[string]interface{} `json:"details,omitempty"`
}

type comparisonPayload struct {
	ChitName          string            `json:"chit_name"`
	TotalInstallments int               `json:"total_installments"`
	ChitValue         float64           `json:"chit_value"`
	FrequencyPerYear  int               `json:"frequency_per_year"`
	Scenarios         []scenarioPayload `json:"scenarios"`
	Ranking           []string          `json:"ranking"`
	BestScenarioName  string            `json:"best_scenario_name"`
	AdvantageAmount   float64           `json:"advantage_amount"`
}

type analyzeResponse struct {
	RequestID string `json:"request_id"`
	analysisPayload
	Frequencies []frequencyPayload `json:"frequencies,omitempty"`
	Duration    string             `json:"duration"`
}

type sweepResponse struct {
	RequestID string               `json:"request_id"`
	Rows      []bidScenarioPayload `json:"rows"`
	Summary   sweepSummaryPayload  `json:"summary"`
	Duration  string               `json:"duration"`
}

type compareResponse struct {
	RequestID string `json:"request_id"`
	comparisonPayload
	Duration string `json:"duration"`
}

// decodeRequest decodes and tag-validates a JSON body, writing the error
// response itself when it returns false.
func (h *handler) decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return false
	}
	if status, err := h.decodeJSON(w, r, dst); err != nil {
		h.respondErrorWithOp(w, r, status, err.Error(), op)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, describeValidation(err), op)
		return false
	}
	return true
}

func describeValidation(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAnalyze"
	start := time.Now()

	var req analyzeRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	result, err := chit.Analyze(cfg)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	resp := analyzeResponse{
		RequestID:       requestID(r),
		analysisPayload: buildAnalysis(result),
	}
	if len(req.CompareFrequencies) > 0 {
		rows, err := chit.CompareFrequencies(cfg, cfg.BidAmount(), req.CompareFrequencies)
		if err != nil {
			h.respondErr(w, r, err, op)
			return
		}
		resp.Frequencies = buildFrequencies(rows)
	}

	elapsed := time.Since(start)
	resp.Duration = elapsed.String()
	h.logger.Info("chit analyzed",
		zap.String("op", op),
		zap.String("request_id", resp.RequestID),
		zap.Float64("annualIRR", result.AnnualIRR),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleSweep(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSweep"
	start := time.Now()

	var req sweepRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	cfg, err := req.toConfig()
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	count := req.Count
	if count <= 0 {
		count = constants.DefaultSweepCount
	}
	if count > h.limits.MaxSweepCount {
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			fmt.Sprintf("count %d exceeds the limit of %d bids", count, h.limits.MaxSweepCount), op)
		return
	}
	if req.MaxBid.LessThan(req.MinBid) {
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			fmt.Sprintf("max_bid (%s) must not be below min_bid (%s)", req.MaxBid, req.MinBid), op)
		return
	}

	scenarios, err := chit.Sweep(cfg, chit.BidRange(req.MinBid, req.MaxBid, count))
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}
	summary, err := chit.SummarizeSweep(scenarios)
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("bids swept",
		zap.String("op", op),
		zap.String("request_id", requestID(r)),
		zap.Int("count", summary.Count),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, sweepResponse{
		RequestID: requestID(r),
		Rows:      buildBidScenarios(scenarios),
		Summary:   buildSweepSummary(summary),
		Duration:  elapsed.String(),
	})
}

func (h *handler) handleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompare"
	start := time.Now()

	var req compareRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	cmp, err := chit.Compare(req.toInput())
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("strategies compared",
		zap.String("op", op),
		zap.String("request_id", requestID(r)),
		zap.String("best", cmp.BestScenarioName),
		zap.Duration("duration", elapsed),
	)
	h.writeJSON(w, http.StatusOK, compareResponse{
		RequestID:         requestID(r),
		comparisonPayload: buildComparison(cmp),
		Duration:          elapsed.String(),
	})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *handler) handleCompareExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleCompareExport"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" {
		h.respondErrorWithOp(w, r, http.StatusBadRequest,
			fmt.Sprintf("unsupported export format %q (expected csv or xlsx)", format), op)
		return
	}

	var req compareRequest
	if !h.decodeRequest(w, r, &req, op) {
		return
	}

	cmp, err := chit.Compare(req.toInput())
	if err != nil {
		h.respondErr(w, r, err, op)
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	if format == "xlsx" {
		contentType = xlsxContentType
		err = output.WriteComparisonXLSX(&buf, &cmp)
	} else {
		err = output.WriteComparisonCSV(&buf, &cmp)
	}
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to export comparison: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="comparison.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export", zap.String("op", op), zap.Error(err))
	}
}

func buildAnalysis(result chit.AnalysisResult) analysisPayload {
	return analysisPayload{
		PrizeAmount:           result.PrizeAmount.InexactFloat64(),
		Cashflows:             chit.CashflowsToFloat(result.Cashflows),
		PeriodIRR:             result.PeriodIRR,
		AnnualIRR:             result.AnnualIRR,
		TotalRepayment:        result.TotalRepayment.InexactFloat64(),
		NetInterestCost:       result.NetInterestCost.InexactFloat64(),
		EffectiveInterestRate: result.EffectiveInterestRate,
		RemainingInstallments: result.Config.RemainingInstallments(),
		WinnerInstallment:     result.Config.WinnerInstallment().InexactFloat64(),
	}
}

func buildFrequencies(rows []chit.FrequencyComparison) []frequencyPayload {
	out := make([]frequencyPayload, 0, len(rows))
	for _, row := range rows {
		out = append(out, frequencyPayload{
			FrequencyPerYear: row.FrequencyPerYear,
			BidAmount:        row.BidAmount.InexactFloat64(),
			PrizeAmount:      row.PrizeAmount.InexactFloat64(),
			PeriodIRR:        row.PeriodIRR,
			AnnualIRR:        row.AnnualIRR,
		})
	}
	return out
}

func buildBidScenario(s chit.BidScenario) bidScenarioPayload {
	return bidScenarioPayload{
		BidAmount:   s.BidAmount.InexactFloat64(),
		PrizeAmount: s.PrizeAmount.InexactFloat64(),
		AnnualIRR:   s.AnnualIRR,
		PeriodIRR:   s.PeriodIRR,
	}
}

func buildBidScenarios(scenarios []chit.BidScenario) []bidScenarioPayload {
	out := make([]bidScenarioPayload, 0, len(scenarios))
	for _, s := range scenarios {
		out = append(out, buildBidScenario(s))
	}
	return out
}

func buildSweepSummary(s chit.SweepSummary) sweepSummaryPayload {
	return sweepSummaryPayload{
		Count:     s.Count,
		MinIRR:    s.MinIRR,
		MaxIRR:    s.MaxIRR,
		MeanIRR:   s.MeanIRR,
		MedianIRR: s.MedianIRR,
		MinBid:    s.MinBid.InexactFloat64(),
		MaxBid:    s.MaxBid.InexactFloat64(),
		MinPrize:  s.MinPrize.InexactFloat64(),
		MaxPrize:  s.MaxPrize.InexactFloat64(),
		Cheapest:  buildBidScenario(s.Cheapest),
	}
}

func buildComparison(cmp chit.ThreeWayComparison) comparisonPayload {
	scenarios := cmp.Scenarios()
	payload := comparisonPayload{
		ChitName:          cmp.ChitName,
		TotalInstallments: cmp.TotalInstallments,
		ChitValue:         cmp.ChitValue.InexactFloat64(),
		FrequencyPerYear:  cmp.FrequencyPerYear,
		Scenarios:         make([]scenarioPayload, 0, len(scenarios)),
		BestScenarioName:  cmp.BestScenarioName,
		AdvantageAmount:   cmp.AdvantageAmount.InexactFloat64(),
	}
	for _, s := range scenarios {
		payload.Scenarios = append(payload.Scenarios, scenarioPayload{
			Name:               s.Name,
			Cashflows:          chit.CashflowsToFloat(s.Cashflows),
			AnnualIRR:          s.AnnualIRR,
			FinalAbsoluteValue: s.FinalAbsoluteValue.InexactFloat64(),
			TotalInvested:      s.TotalInvested.InexactFloat64(),
			NetGain:            s.NetGain.InexactFloat64(),
			Details:            plainDetails(s.Details),
		})
	}
	for _, s := range cmp.Ranked() {
		payload.Ranking = append(payload.Ranking, s.Name)
	}
	return payload
}

// plainDetails converts decimal amounts to floats so details serialize as
// JSON numbers.
func plainDetails(details map[string]any) map[string]interface{} {
	if len(details) == 0 {
		return nil
	}
	out := make(map[string]interface{}, len(details))
	for key, value := range details {
		switch v := value.(type) {
		case decimal.Decimal:
			out[key] = v.InexactFloat64()
		case []decimal.Decimal:
			out[key] = chit.CashflowsToFloat(v)
		default:
			out[key] = v
		}
	}
	return out
}
