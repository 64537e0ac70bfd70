package activation

import "strings"

// Column positions in the activation table. The order is the persisted
// contract shared with existing table contents and must not change.
const (
	ColDate = iota
	ColAccessOrder
	ColWorkOrder
	ColServiceNumber
	ColCustomerName
	ColOwner
	ColWorkzone
	ColONTSerial
	ColONTNik
	ColSTBID
	ColSTBNik
	ColTechnician

	NumColumns
)

var header = []string{
	"TANGGAL",
	"AO",
	"WO",
	"NO LAYANAN",
	"NAMA PELANGGAN",
	"OWNER",
	"WORKZONE",
	"SN ONT",
	"NIK ONT",
	"STB ID",
	"NIK STB",
	"TEKNISI",
}

// Header returns the column names of the activation table.
func Header() []string {
	out := make([]string, len(header))
	copy(out, header)
	return out
}

// Record is one accepted field-service activation.
type Record struct {
	DateLabel       string `json:"date"`
	AccessOrder     string `json:"ao"`
	WorkOrderID     string `json:"wo"`
	ServiceNumber   string `json:"service_number"`
	CustomerName    string `json:"customer_name"`
	Owner           string `json:"owner"`
	Workzone        string `json:"workzone"`
	ONTSerialNumber string `json:"sn_ont"`
	ONTNik          string `json:"nik_ont"`
	STBID           string `json:"stb_id"`
	STBNik          string `json:"nik_stb"`
	TechnicianLabel string `json:"technician"`
}

// Draft is the parser's output before validation. Any field may be empty.
type Draft struct {
	Record
	Dialect string `json:"dialect"`
}

// Key is the natural key of a record: ONT serial and ONT NIK, compared
// case-insensitively.
type Key struct {
	Serial string
	Nik    string
}

// Empty reports whether either half of the key is missing.
func (k Key) Empty() bool {
	return k.Serial == "" || k.Nik == ""
}

func normalizeKey(serial, nik string) Key {
	return Key{
		Serial: strings.ToUpper(strings.TrimSpace(serial)),
		Nik:    strings.ToUpper(strings.TrimSpace(nik)),
	}
}

// Key returns the record's natural key.
func (r Record) Key() Key {
	return normalizeKey(r.ONTSerialNumber, r.ONTNik)
}

// Row encodes the record in table column order.
func (r Record) Row() []string {
	row := make([]string, NumColumns)
	row[ColDate] = r.DateLabel
	row[ColAccessOrder] = r.AccessOrder
	row[ColWorkOrder] = r.WorkOrderID
	row[ColServiceNumber] = r.ServiceNumber
	row[ColCustomerName] = r.CustomerName
	row[ColOwner] = r.Owner
	row[ColWorkzone] = r.Workzone
	row[ColONTSerial] = r.ONTSerialNumber
	row[ColONTNik] = r.ONTNik
	row[ColSTBID] = r.STBID
	row[ColSTBNik] = r.STBNik
	row[ColTechnician] = r.TechnicianLabel
	return row
}

// RecordFromRow decodes a table row. Short rows leave trailing fields empty;
// cells past the last column are ignored.
func RecordFromRow(row []string) Record {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	return Record{
		DateLabel:       cell(ColDate),
		AccessOrder:     cell(ColAccessOrder),
		WorkOrderID:     cell(ColWorkOrder),
		ServiceNumber:   cell(ColServiceNumber),
		CustomerName:    cell(ColCustomerName),
		Owner:           cell(ColOwner),
		Workzone:        cell(ColWorkzone),
		ONTSerialNumber: cell(ColONTSerial),
		ONTNik:          cell(ColONTNik),
		STBID:           cell(ColSTBID),
		STBNik:          cell(ColSTBNik),
		TechnicianLabel: cell(ColTechnician),
	}
}

// RecordsFromRows decodes every data row, skipping the header row and rows
// with no cells at all.
func RecordsFromRows(rows [][]string) []Record {
	if len(rows) <= 1 {
		return nil
	}
	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		out = append(out, RecordFromRow(row))
	}
	return out
}
