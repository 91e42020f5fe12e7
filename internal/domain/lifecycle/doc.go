// Package lifecycle contiene las tablas de transición de estados de las entidades
// del dominio (requisiciones, unidades, bienes patrimoniales y tickets).
//
// Son funciones puras: los casos de uso las consultan para validar la transición
// antes de la actualización condicional sobre el estado leído.
package lifecycle
