// Package sheets implementa el almacén de documentos sobre Google Sheets y el
// aprovisionamiento de libros nuevos sobre Google Drive.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

var scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Client agrupa los servicios de Sheets y Drive autenticados. Se construye
// explícitamente en el arranque y se inyecta donde haga falta; no existe
// ningún cliente global.
type Client struct {
	sheets *sheets.Service
	drive  *drive.Service
}

// NewClient autentica con el client_secret OAuth y un token ya emitido.
// Emitir o renovar el token es un proceso externo: si el archivo no existe
// o está vencido sin refresh token, la construcción falla.
func NewClient(ctx context.Context, credentialsFile, tokenFile string) (*Client, error) {
	secret, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets: leer credenciales: %w", err)
	}
	conf, err := google.ConfigFromJSON(secret, scopes...)
	if err != nil {
		return nil, fmt.Errorf("sheets: parsear client_secret: %w", err)
	}

	tok, err := readToken(tokenFile)
	if err != nil {
		return nil, err
	}
	httpClient := conf.Client(ctx, tok)

	sheetsSvc, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("sheets: crear servicio Sheets: %w", err)
	}
	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("sheets: crear servicio Drive: %w", err)
	}
	return &Client{sheets: sheetsSvc, drive: driveSvc}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sheets: leer token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("sheets: parsear token: %w", err)
	}
	return &tok, nil
}
