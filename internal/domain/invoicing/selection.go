package invoicing

import (
	"fmt"
	"strings"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
	"github.com/jhoicas/fieldservice-invoicing/internal/domain/entity"
)

// Disambiguation escaneo de devolución suspendido a la espera de la selección de seriales.
type Disambiguation struct {
	Scan    string                   `json:"scan"`
	Product entity.ProductDescriptor `json:"product"`
	Issued  []entity.IssuedSerial    `json:"issued"`
}

// Classification seriales entregados separados según estén o no ya en la factura.
type Classification struct {
	Addable []entity.IssuedSerial `json:"addable"`
	Present []entity.IssuedSerial `json:"present"`
}

// Classify compara cada serial entregado con los seriales de las líneas
// (exacto tras trim, sensible a mayúsculas).
func Classify(issued []entity.IssuedSerial, lines []entity.LineItem) Classification {
	inLines := lineSerials(lines)
	c := Classification{
		Addable: []entity.IssuedSerial{},
		Present: []entity.IssuedSerial{},
	}
	for _, is := range issued {
		if _, ok := inLines[strings.TrimSpace(is.SerialNumber)]; ok {
			c.Present = append(c.Present, is)
		} else {
			c.Addable = append(c.Addable, is)
		}
	}
	return c
}

// ConfirmSelection aplica en bloque los seriales a agregar y a quitar.
// Ambos conjuntos se evalúan contra la misma foto de lines, así que el orden no importa.
func ConfirmSelection(pending Disambiguation, lines []entity.LineItem, add, remove []string, newID IDFunc) ([]entity.LineItem, error) {
	addSet := toSet(add)
	removeSet := toSet(remove)
	if len(addSet) == 0 && len(removeSet) == 0 {
		return nil, domain.ErrEmptySelection
	}

	c := Classify(pending.Issued, lines)
	addable := make(map[string]entity.IssuedSerial, len(c.Addable))
	for _, is := range c.Addable {
		addable[strings.TrimSpace(is.SerialNumber)] = is
	}
	present := make(map[string]struct{}, len(c.Present))
	for _, is := range c.Present {
		present[strings.TrimSpace(is.SerialNumber)] = struct{}{}
	}
	for s := range addSet {
		if _, ok := addable[s]; !ok {
			return nil, fmt.Errorf("%w: %s no se puede agregar", domain.ErrInvalidSelection, s)
		}
	}
	for s := range removeSet {
		if _, ok := present[s]; !ok {
			return nil, fmt.Errorf("%w: %s no está en la factura", domain.ErrInvalidSelection, s)
		}
	}

	out := make([]entity.LineItem, 0, len(lines)+len(addSet))
	for _, l := range lines {
		if l.Serialized() {
			if _, drop := removeSet[strings.TrimSpace(l.Serial())]; drop {
				continue
			}
		}
		out = append(out, l)
	}
	rate := pending.Product.RateOrZero()
	// Se recorre Issued para que las líneas nuevas salgan en el orden del resolvedor.
	for _, is := range pending.Issued {
		s := strings.TrimSpace(is.SerialNumber)
		if _, ok := addSet[s]; !ok {
			continue
		}
		delete(addSet, s)
		out = append(out, newLine(newID(), pending.Product, pending.Scan, &s, is.Quantity, rate))
	}
	return out, nil
}

func lineSerials(lines []entity.LineItem) map[string]struct{} {
	set := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if l.Serialized() {
			set[strings.TrimSpace(l.Serial())] = struct{}{}
		}
	}
	return set
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			set[s] = struct{}{}
		}
	}
	return set
}
