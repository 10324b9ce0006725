package migrations

import "embed"

// FS - встроенные миграции журнала проверок
//
//go:embed *.sql
var FS embed.FS
