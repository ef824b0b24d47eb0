package entity

// IssuedSerial unidad despachada previamente a un empleado y disponible para devolución.
type IssuedSerial struct {
	SerialNumber  string `json:"serial_number"`
	Quantity      int    `json:"quantity"`
	VoucherSeries string `json:"voucher_series"` // comprobante de origen
	VoucherNo     string `json:"voucher_no"`
}
