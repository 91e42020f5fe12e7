// opsctl herramienta de operación: migraciones, alta de municipios y carga de catálogos.
//
// Uso:
//
//	opsctl migrate up|down|status
//	opsctl tenant create --code MED --name "Medellín" --admin-email admin@med.gov.co --admin-password ...
//	opsctl services import --tenant MED --file dependencias.csv --latin1
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
