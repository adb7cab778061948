package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// GenerateDocument renders the template file at templatePath with data and
// writes the result to outputPath, creating parent directories as needed.
// Returns the written path.
func GenerateDocument(templatePath, outputPath string, data map[string]any) (string, error) {
	tmpl, err := template.ParseFiles(templatePath)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", templatePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), os.ModePerm); err != nil {
		return "", err
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if err := tmpl.Execute(out, data); err != nil {
		return "", fmt.Errorf("render %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// ConvertToPDF converts the document at path to PDF using LibreOffice in
// headless mode. Override the binary with SOFFICE_BIN. Returns the .pdf path.
func ConvertToPDF(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	bin := os.Getenv("SOFFICE_BIN")
	if bin == "" {
		bin = "soffice"
	}

	outDir := filepath.Dir(path)
	cmd := exec.CommandContext(ctx, bin, "--headless", "--convert-to", "pdf", "--outdir", outDir, path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("pdf conversion failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	ext := filepath.Ext(path)
	pdfPath := strings.TrimSuffix(path, ext) + ".pdf"
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("pdf conversion produced no output: %w", err)
	}
	return pdfPath, nil
}
