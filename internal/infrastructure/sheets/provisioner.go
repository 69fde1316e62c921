package sheets

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/drive/v3"

	"github.com/pymebot/inventario-bot/internal/application/ports"
)

var _ ports.SheetProvisioner = (*Provisioner)(nil)

// Provisioner copia la plantilla de inventario para una pyme nueva.
type Provisioner struct {
	drive      *drive.Service
	templateID string
	folderID   string
}

// NewProvisioner construye el aprovisionador. folderID acepta también la URL
// completa de la carpeta de Drive (se recorta al último segmento).
func NewProvisioner(c *Client, templateID, folderID string) *Provisioner {
	if strings.Contains(folderID, "drive.google.com") {
		parts := strings.Split(strings.TrimSpace(folderID), "/")
		folderID = parts[len(parts)-1]
	}
	return &Provisioner{drive: c.drive, templateID: templateID, folderID: folderID}
}

// CopyTemplate duplica la plantilla con el título dado y devuelve el id del
// libro nuevo. El libro queda dentro de la carpeta configurada, si hay una.
func (p *Provisioner) CopyTemplate(ctx context.Context, title string) (string, error) {
	if p.templateID == "" {
		return "", fmt.Errorf("sheets: TEMPLATE_SHEET_ID no configurado")
	}
	meta := &drive.File{Name: title}
	if p.folderID != "" {
		meta.Parents = []string{p.folderID}
	}
	file, err := p.drive.Files.Copy(p.templateID, meta).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("sheets: copiar plantilla: %w", err)
	}
	return file.Id, nil
}
