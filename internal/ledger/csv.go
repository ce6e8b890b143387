package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/cashflow/internal/model"
)

// Header is the CSV header of an exported ledger.
const Header = "transaction_date,value_date,description,amount,balance"

const (
	numFields    = 5
	dateFormat   = "2006-01-02"
	colTxDate    = 0
	colValueDate = 1
	colDesc      = 2
	colAmount    = 3
	colBalance   = 4
)

// WriteTransactions writes the ledger as canonical CSV (including header).
func WriteTransactions(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		if err := cw.Write(MarshalTransaction(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadTransactions reads a ledger previously written by WriteTransactions.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	txs := make([]model.Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		tx, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(tx model.Transaction) []string {
	row := make([]string, numFields)
	row[colTxDate] = tx.TransactionDate.Format(dateFormat)
	row[colValueDate] = tx.ValueDate.Format(dateFormat)
	row[colDesc] = tx.Description
	row[colAmount] = tx.Amount.StringFixed(2)
	row[colBalance] = tx.Balance.StringFixed(2)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	txDate, err := time.Parse(dateFormat, record[colTxDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction_date %q: %w", record[colTxDate], err)
	}

	valueDate, err := time.Parse(dateFormat, record[colValueDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing value_date %q: %w", record[colValueDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	balance, err := decimal.NewFromString(record[colBalance])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing balance %q: %w", record[colBalance], err)
	}

	return model.Transaction{
		TransactionDate: txDate,
		ValueDate:       valueDate,
		Description:     record[colDesc],
		Amount:          amount,
		Balance:         balance,
	}, nil
}
