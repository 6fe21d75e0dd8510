package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"bloomkart/internal/model"
)

// generate_sample_promos creates a sample promo definition file so the
// API can run locally without a production promo drop.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	nextYear := time.Now().AddDate(1, 0, 0)
	lastYear := time.Now().AddDate(-1, 0, 0)

	promos := []model.PromoCode{
		{
			Code:   "WELCOME10",
			Kind:   model.PromoKindPercent,
			Value:  decimal.NewFromInt(10),
			Active: true,
		},
		{
			Code:           "SPRING50",
			Kind:           model.PromoKindFixed,
			Value:          decimal.NewFromInt(50),
			MinOrderAmount: decimal.NewFromInt(300),
			ExpiresAt:      &nextYear,
			Active:         true,
		},
		{
			Code:      "LASTSEASON",
			Kind:      model.PromoKindPercent,
			Value:     decimal.NewFromInt(15),
			ExpiresAt: &lastYear,
			Active:    true,
		},
		{
			Code:   "RETIRED20",
			Kind:   model.PromoKindPercent,
			Value:  decimal.NewFromInt(20),
			Active: false,
		},
	}

	filePath := filepath.Join(dataDir, "promobase.jsonl.gz")
	if err := createPromoFile(filePath, promos); err != nil {
		log.Fatalf("Failed to create %s: %v", filePath, err)
	}

	fmt.Printf("Created %s with %d promo codes\n", filePath, len(promos))
}

// createPromoFile writes promo codes as gzipped JSON lines.
func createPromoFile(path string, promos []model.PromoCode) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gz := gzip.NewWriter(file)
	defer gz.Close()

	enc := json.NewEncoder(gz)
	for _, p := range promos {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to encode promo %s: %w", p.Code, err)
		}
	}

	return nil
}
