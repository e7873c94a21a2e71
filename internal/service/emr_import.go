package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go-inventory-core/internal/model"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// EMR exports are tab-separated tables whose columns of interest carry the
// Korean headers for prescription code and total consumption.
const (
	emrCodeColumn = "처방코드"
	emrQtyColumn  = "총소모량"
)

var ErrEmrMissingColumns = errors.New("emr export is missing the 처방코드 or 총소모량 column")

// EmrRow is one raw row of an EMR consumption export.
type EmrRow struct {
	Code string
	Qty  int
}

// EmrImportResult summarizes an import: the Sell transactions recorded and
// the prescription codes no SKU bit_code matched.
type EmrImportResult struct {
	Recorded       []model.Transaction `json:"recorded"`
	UnmatchedCodes []string            `json:"unmatched_codes,omitempty"`
}

// ParseEmrExport reads an EMR consumption export. The files come out of the
// EMR as UTF-16 tab-separated text; plain UTF-8 is accepted too. Columns
// other than the code and quantity are ignored.
func ParseEmrExport(r io.Reader) ([]EmrRow, error) {
	br := bufio.NewReader(r)
	var src io.Reader = br
	if head, err := br.Peek(2); err == nil && len(head) == 2 {
		if (head[0] == 0xFF && head[1] == 0xFE) || (head[0] == 0xFE && head[1] == 0xFF) {
			src = transform.NewReader(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		}
	}

	cr := csv.NewReader(src)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed reading emr export: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrEmrMissingColumns
	}

	codeIdx, qtyIdx := -1, -1
	for i, name := range records[0] {
		switch strings.TrimSpace(name) {
		case emrCodeColumn:
			codeIdx = i
		case emrQtyColumn:
			qtyIdx = i
		}
	}
	if codeIdx < 0 || qtyIdx < 0 {
		return nil, ErrEmrMissingColumns
	}

	rows := make([]EmrRow, 0, len(records)-1)
	for _, rec := range records[1:] {
		if codeIdx >= len(rec) || qtyIdx >= len(rec) {
			continue
		}
		code := strings.TrimSpace(rec[codeIdx])
		if code == "" {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[qtyIdx]))
		if err != nil {
			return nil, fmt.Errorf("emr row for code %s: bad quantity %q", code, rec[qtyIdx])
		}
		rows = append(rows, EmrRow{Code: code, Qty: qty})
	}
	return rows, nil
}

// MatchEmrConsumption maps export rows onto SKUs by bit_code. A SKU's
// bit_code may hold several comma-separated codes; quantities of all rows
// matching the same SKU are summed. Codes no SKU carries are returned
// separately.
func MatchEmrConsumption(rows []EmrRow, skus []model.SKU) (map[int]int, []string) {
	codeToSku := make(map[string]int)
	for _, sku := range skus {
		for _, code := range strings.Split(sku.BitCode, ",") {
			if code = strings.TrimSpace(code); code != "" {
				codeToSku[code] = sku.SkuID
			}
		}
	}

	perSku := make(map[int]int)
	var unmatched []string
	for _, row := range rows {
		skuID, ok := codeToSku[row.Code]
		if !ok {
			unmatched = append(unmatched, row.Code)
			continue
		}
		perSku[skuID] += row.Qty
	}
	return perSku, unmatched
}

// ImportEmrConsumption reads an EMR consumption export and records one Sell
// transaction per matched SKU, summing rows that map to the same SKU. Zero
// consumption rows are skipped. On a recording failure the transactions
// already recorded stay recorded and are reported in the result.
func (s *transactionService) ImportEmrConsumption(ctx context.Context, r io.Reader, userID int, userName string) (*EmrImportResult, error) {
	rows, err := ParseEmrExport(r)
	if err != nil {
		return nil, err
	}
	skus, err := s.skuRepo.FindAll(0, false)
	if err != nil {
		return nil, err
	}

	perSku, unmatched := MatchEmrConsumption(rows, skus)
	result := &EmrImportResult{UnmatchedCodes: unmatched}

	skuIDs := make([]int, 0, len(perSku))
	for id := range perSku {
		skuIDs = append(skuIDs, id)
	}
	sort.Ints(skuIDs)

	for _, skuID := range skuIDs {
		qty := perSku[skuID]
		if qty <= 0 {
			continue
		}
		tr := model.Transaction{
			UserID:      userID,
			SkuID:       skuID,
			TrTypeID:    model.TrTypeIDs[model.TrTypeSell],
			TrQty:       qty,
			Description: "EMR import",
		}
		if err := s.RecordTransaction(&tr, userName); err != nil {
			return result, fmt.Errorf("sku %d: %w", skuID, err)
		}
		result.Recorded = append(result.Recorded, tr)
	}
	return result, nil
}
