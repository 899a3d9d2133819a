// Package invite handles bulk onboarding: parsing recipient manifests from
// spreadsheets, generating a starter workbook, and launching the invitation
// emails one at a time through the API.
package invite

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Recipient is one pending invitation parsed from a manifest.
type Recipient struct {
	Email string
	Name  string
	Role  string
}

// ParseRecipients reads a manifest in .xlsx, .xls or .csv form. The header
// row must contain an email column (case-insensitive); name and role columns
// are optional, role defaulting to employee. Rows without a usable email
// address are dropped without comment, matching how people actually fill
// these sheets out.
func ParseRecipients(reader io.Reader, filename string) ([]Recipient, error) {
	rows, err := readRowsFromManifest(reader, filename)
	if err != nil {
		return nil, err
	}

	headerIndex := map[string]int{}
	for i, header := range rows[0] {
		headerIndex[normalizeHeader(header)] = i
	}

	emailIdx, ok := headerIndex["email"]
	if !ok {
		return nil, fmt.Errorf("missing required column: email")
	}
	nameIdx := -1
	if idx, ok := headerIndex["name"]; ok {
		nameIdx = idx
	}
	roleIdx := -1
	if idx, ok := headerIndex["role"]; ok {
		roleIdx = idx
	}

	var recipients []Recipient
	for _, row := range rows[1:] {
		email := cellValue(row, emailIdx)
		name := cellValue(row, nameIdx)
		// Swapped columns are common enough to repair instead of reject.
		if !strings.Contains(email, "@") && strings.Contains(name, "@") {
			email, name = name, email
		}
		if !strings.Contains(email, "@") {
			continue
		}
		role := strings.ToLower(cellValue(row, roleIdx))
		if role == "" {
			role = "employee"
		}
		recipients = append(recipients, Recipient{
			Email: email,
			Name:  name,
			Role:  role,
		})
	}

	return recipients, nil
}

func readRowsFromManifest(reader io.Reader, filename string) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == ".csv" {
		parser := csv.NewReader(reader)
		parser.FieldsPerRecord = -1
		rows, err := parser.ReadAll()
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, fmt.Errorf("manifest is empty")
		}
		return rows, nil
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return readRowsFromSpreadsheet(bytes.NewReader(data), ext)
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
