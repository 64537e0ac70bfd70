// Package parser turns free-text activation reports into activation drafts.
package parser

import (
	"regexp"

	"github.com/MikeSquared-Agency/aktivasi/internal/activation"
)

type field int

const (
	fieldAccessOrder field = iota
	fieldWorkOrder
	fieldServiceNumber
	fieldCustomerName
	fieldOwner
	fieldWorkzone
	fieldONTSerial
	fieldONTNik
	fieldSTBID
	fieldSTBNik
)

var fieldOrder = []field{
	fieldAccessOrder,
	fieldWorkOrder,
	fieldServiceNumber,
	fieldCustomerName,
	fieldOwner,
	fieldWorkzone,
	fieldONTSerial,
	fieldONTNik,
	fieldSTBID,
	fieldSTBNik,
}

type ruleSet map[field][]rule

var (
	ncxOrderRe     = regexp.MustCompile(`\b(1-[0-9]{6,12})\b`)
	scOrderRe      = regexp.MustCompile(`(?i)\b(SC[0-9]{6,12})\b`)
	wmsOrderRe     = regexp.MustCompile(`(?i)\b(WMS-?[0-9]{5,12})\b`)
	workOrderRe    = regexp.MustCompile(`(?i)\b(WO-?[0-9]{6,12})\b`)
	inetNumberRe   = regexp.MustCompile(`\b(1[0-9]{11})\b`)
	sidRe          = regexp.MustCompile(`(?i)\bSID\s*[:=]?\s*([0-9]{6,15})\b`)
	workzoneRe     = regexp.MustCompile(`(?i)\b(?:WORKZONE|STO)(?:\s*[:=]\s*|\s+)([A-Z]{2,4})\b`)
	ontBrandRe     = regexp.MustCompile(`(?i)\b((?:ZTEG|HWTC|FHTT|ALCL|ZNTS|HUAW|NOKA)[0-9A-F]{4,12})\b`)
	ontNikLooseRe  = regexp.MustCompile(`(?i)\bNIK\s*ONT\s*[:=]?\s*([0-9]{5,})`)
	stbBrandRe     = regexp.MustCompile(`(?i)\b((?:ZTEB|HWTV|FHTV)[0-9A-F]{4,12})\b`)
	stbNikLooseRe  = regexp.MustCompile(`(?i)\bNIK\s*STB\s*[:=]?\s*([0-9]{5,})`)
	customerNameRe = regexp.MustCompile(`^CUSTOMER\s+NAME\s*$`)
)

// Labeled fields shared by every dialect. Dialect tables put their own
// positional and pattern rules around these.
var (
	accessOrderLabels   = label("AO", "NO AO", "ACCESS ORDER", "ORDER ID")
	workOrderLabels     = label("WO", "NO WO", "WORK ORDER")
	serviceNumberLabels = label("NO LAYANAN", "NO INTERNET", "NO INET", "INET", "SERVICE NUMBER")
	customerLabels      = label("NAMA PELANGGAN", "NAMA", "PELANGGAN", "CUSTOMER NAME", "CUSTOMER")
	workzoneLabels      = label("WORKZONE", "STO")
	ontSerialLabels     = label("SN ONT", "SN")
	ontNikLabels        = label("NIK ONT")
	stbIDLabels         = label("STB ID", "SN STB", "ID STB")
	stbNikLabels        = label("NIK STB")
)

func deviceRules(rs ruleSet) ruleSet {
	rs[fieldONTSerial] = []rule{ontSerialLabels, pattern(ontBrandRe, 1)}
	rs[fieldONTNik] = []rule{ontNikLabels, pattern(ontNikLooseRe, 1)}
	rs[fieldSTBID] = []rule{stbIDLabels, pattern(stbBrandRe, 1)}
	rs[fieldSTBNik] = []rule{stbNikLabels, pattern(stbNikLooseRe, 1)}
	return rs
}

var dialectRules = map[Dialect]ruleSet{
	// Order-management pastes repeat the order id for every status change;
	// the last one is the activated order.
	DialectBGES: deviceRules(ruleSet{
		fieldAccessOrder:   {lastPattern(ncxOrderRe, 1), accessOrderLabels},
		fieldWorkOrder:     {workOrderLabels, lastPattern(workOrderRe, 1)},
		fieldServiceNumber: {pattern(sidRe, 1), serviceNumberLabels},
		fieldCustomerName:  {lineAfter(customerNameRe, 1), customerLabels},
		fieldOwner:         {constant(string(DialectBGES))},
		fieldWorkzone:      {pattern(workzoneRe, 1), workzoneLabels},
	}),
	DialectWMS: deviceRules(ruleSet{
		fieldAccessOrder:   {accessOrderLabels, pattern(wmsOrderRe, 1), pattern(scOrderRe, 1)},
		fieldWorkOrder:     {workOrderLabels, pattern(workOrderRe, 1)},
		fieldServiceNumber: {serviceNumberLabels, pattern(inetNumberRe, 1)},
		fieldCustomerName:  {label("NAMA LOKASI", "LOKASI"), customerLabels},
		fieldOwner:         {constant(string(DialectWMS))},
		fieldWorkzone:      {workzoneLabels, pattern(workzoneRe, 1)},
	}),
	DialectIndibiz: deviceRules(ruleSet{
		fieldAccessOrder:   {accessOrderLabels, pattern(scOrderRe, 1)},
		fieldWorkOrder:     {workOrderLabels, pattern(workOrderRe, 1)},
		fieldServiceNumber: {serviceNumberLabels, pattern(inetNumberRe, 1)},
		fieldCustomerName:  {customerLabels},
		fieldOwner:         {constant(string(DialectIndibiz))},
		fieldWorkzone:      {workzoneLabels, pattern(workzoneRe, 1)},
	}),
	DialectGeneric: deviceRules(ruleSet{
		fieldAccessOrder:   {accessOrderLabels, pattern(scOrderRe, 1), pattern(ncxOrderRe, 1)},
		fieldWorkOrder:     {workOrderLabels, pattern(workOrderRe, 1)},
		fieldServiceNumber: {serviceNumberLabels, pattern(inetNumberRe, 1)},
		fieldCustomerName:  {customerLabels},
		fieldOwner:         {label("OWNER")},
		fieldWorkzone:      {workzoneLabels, pattern(workzoneRe, 1)},
	}),
}

// Parse extracts an activation draft from raw text submitted by submitter.
// It never fails: unrecognized text falls back to the Generic dialect and
// fields that cannot be found are left empty. DateLabel is not set.
func Parse(raw string, submitter activation.User) activation.Draft {
	in := newInput(raw)
	dialect := Classify(in.upper)
	rules := dialectRules[dialect]

	d := activation.Draft{Dialect: string(dialect)}
	for _, f := range fieldOrder {
		set(&d.Record, f, firstOf(in, rules[f]))
	}
	d.TechnicianLabel = submitter.DisplayLabel()
	return d
}

func set(r *activation.Record, f field, v string) {
	switch f {
	case fieldAccessOrder:
		r.AccessOrder = v
	case fieldWorkOrder:
		r.WorkOrderID = v
	case fieldServiceNumber:
		r.ServiceNumber = v
	case fieldCustomerName:
		r.CustomerName = v
	case fieldOwner:
		r.Owner = v
	case fieldWorkzone:
		r.Workzone = v
	case fieldONTSerial:
		r.ONTSerialNumber = v
	case fieldONTNik:
		r.ONTNik = v
	case fieldSTBID:
		r.STBID = v
	case fieldSTBNik:
		r.STBNik = v
	}
}

// Validate accepts a draft whose natural key is complete and reports the
// missing halves otherwise.
func Validate(d activation.Draft) (activation.Record, error) {
	var missing []string
	if d.ONTSerialNumber == "" {
		missing = append(missing, activation.FieldONTSerial)
	}
	if d.ONTNik == "" {
		missing = append(missing, activation.FieldONTNik)
	}
	if len(missing) > 0 {
		return activation.Record{}, &activation.MissingFieldsError{Fields: missing}
	}
	return d.Record, nil
}
