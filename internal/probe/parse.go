package probe

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/hamed0406/probeexporter/internal/domain"
)

var (
	errUnknownClause = errors.New("unknown clause")
	errMissingValue  = errors.New("missing value")
	errBadUnit       = errors.New("unexpected unit")
	errNotFinite     = errors.New("not a finite number")
	errSigned        = errors.New("unexpected sign")
)

// tokenError is what a shape handler returns; ParsePing turns it into a
// MalformedLineError with the line position attached.
type tokenError struct {
	token string
	err   error
}

func (e *tokenError) Error() string { return e.token + ": " + e.err.Error() }

// lineShape is one known kind of ping output line. apply is nil for lines
// that carry nothing (banners, headers).
type lineShape struct {
	name  string
	match func(fields []string) bool
	apply func(fields []string, res *domain.PingResult) error
}

// Most specific first; the first match wins.
var pingShapes = []lineShape{
	{name: "summary", match: isSummaryLine, apply: applySummary},
	{name: "rtt", match: isRTTLine, apply: applyRTT},
	{name: "section", match: isSectionHeader},
	{name: "trailer", match: isTrailer},
	{name: "banner", match: isBanner},
}

// ParsePing turns `ping -q` output into a PingResult. It never panics: on the
// first unrecognized or malformed line it stops and returns what was parsed
// from the preceding lines together with an *UnrecognizedLineError or a
// *MalformedLineError. Empty output gives an empty result and no error.
func ParsePing(out string) (domain.PingResult, error) {
	var res domain.PingResult
	for i, raw := range strings.Split(out, "\n") {
		text := strings.TrimRight(raw, "\r")
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		shape, ok := classify(fields)
		if !ok {
			return res, &UnrecognizedLineError{Line: i + 1, Text: text}
		}
		if shape.apply == nil {
			continue
		}

		next := res
		if err := shape.apply(fields, &next); err != nil {
			me := &MalformedLineError{Line: i + 1, Text: text, Err: err}
			var te *tokenError
			if errors.As(err, &te) {
				me.Token = te.token
				me.Err = te.err
			}
			return res, me
		}
		res = next
	}
	return res, nil
}

func classify(fields []string) (lineShape, bool) {
	for _, s := range pingShapes {
		if s.match(fields) {
			return s, true
		}
	}
	return lineShape{}, false
}

// PING 1.1.1.1 (1.1.1.1) 56(84) bytes of data.
// PING6(56=40+8+8 bytes) ::1 --> ::1
func isBanner(fields []string) bool {
	return fields[0] == "PING" || strings.HasPrefix(fields[0], "PING6")
}

// --- 1.1.1.1 ping statistics ---
func isSectionHeader(fields []string) bool {
	n := len(fields)
	if n < 4 || fields[0] != "---" || fields[n-1] != "---" || fields[n-2] != "statistics" {
		return false
	}
	return fields[n-3] == "ping" || fields[n-3] == "ping6"
}

// pipe 4
// Printed on its own line by iputils when no reply came back.
func isTrailer(fields []string) bool {
	return fields[0] == "pipe" || fields[0] == "ipg/ewma"
}

// 10 packets transmitted, 10 received, 0% packet loss, time 9011ms
// 1 packets transmitted, 1 packets received, 0.0% packet loss
func isSummaryLine(fields []string) bool {
	return len(fields) >= 3 && fields[1] == "packets" && strings.HasPrefix(fields[2], "transmitted")
}

// A summary line replaces everything an earlier one reported.
func applySummary(fields []string, res *domain.PingResult) error {
	res.Transmitted, res.Received, res.Duplicates, res.Errors = nil, nil, nil, nil
	res.PacketLoss, res.ElapsedMS = nil, nil

	for _, clause := range strings.Split(strings.Join(fields, " "), ",") {
		cf := strings.Fields(clause)
		if len(cf) == 0 {
			continue
		}
		last := cf[len(cf)-1]

		switch {
		case len(cf) >= 2 && last == "transmitted":
			n, err := parseInt(cf[0])
			if err != nil {
				return err
			}
			res.Transmitted = &n
		case len(cf) >= 2 && last == "received":
			n, err := parseInt(cf[0])
			if err != nil {
				return err
			}
			res.Received = &n
		case len(cf) == 2 && last == "duplicates":
			n, err := parseInt(strings.TrimPrefix(cf[0], "+"))
			if err != nil {
				return err
			}
			res.Duplicates = &n
		case len(cf) == 2 && last == "errors":
			n, err := parseInt(strings.TrimPrefix(cf[0], "+"))
			if err != nil {
				return err
			}
			res.Errors = &n
		case len(cf) == 2 && last == "corrupted":
			if _, err := parseInt(strings.TrimPrefix(cf[0], "+")); err != nil {
				return err
			}
		case len(cf) == 3 && cf[1] == "packet" && last == "loss":
			if !strings.HasSuffix(cf[0], "%") {
				return &tokenError{token: cf[0], err: errBadUnit}
			}
			p, err := parseFloat(strings.TrimSuffix(cf[0], "%"))
			if err != nil {
				return err
			}
			res.PacketLoss = &p
		case cf[0] == "time":
			if len(cf) != 2 {
				return &tokenError{token: clause, err: errMissingValue}
			}
			if !strings.HasSuffix(cf[1], "ms") {
				return &tokenError{token: cf[1], err: errBadUnit}
			}
			ms, err := parseInt(strings.TrimSuffix(cf[1], "ms"))
			if err != nil {
				return err
			}
			res.ElapsedMS = &ms
		default:
			return &tokenError{token: strings.TrimSpace(clause), err: errUnknownClause}
		}
	}
	return nil
}

// rtt min/avg/max/mdev = 7.427/7.654/7.936/0.169 ms
// round-trip min/avg/max/std-dev = 0.045/0.045/0.045/0.000 ms
// round-trip min/avg/max = 12.3/12.3/12.3 ms
func isRTTLine(fields []string) bool {
	if len(fields) < 4 || fields[2] != "=" {
		return false
	}
	return (fields[0] == "rtt" || fields[0] == "round-trip") && strings.HasPrefix(fields[1], "min/avg/max")
}

func applyRTT(fields []string, res *domain.PingResult) error {
	if len(fields) > 4 && !strings.HasPrefix(fields[4], "ms") {
		return &tokenError{token: fields[4], err: errBadUnit}
	}
	slots := []**float64{&res.RTTMin, &res.RTTAvg, &res.RTTMax, &res.RTTMdev}
	values := strings.Split(fields[3], "/")
	if len(values) > len(slots) {
		values = values[:len(slots)]
	}
	for i, v := range values {
		f, err := parseFloat(v)
		if err != nil {
			return err
		}
		*slots[i] = &f
	}
	return nil
}

// Values are never signed; the +N clauses strip their own prefix.
func unsigned(tok string) error {
	if tok != "" && (tok[0] == '-' || tok[0] == '+') {
		return &tokenError{token: tok, err: errSigned}
	}
	return nil
}

func parseInt(tok string) (int64, error) {
	if err := unsigned(tok); err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, &tokenError{token: tok, err: err}
	}
	return n, nil
}

func parseFloat(tok string) (float64, error) {
	if err := unsigned(tok); err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, &tokenError{token: tok, err: err}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &tokenError{token: tok, err: errNotFinite}
	}
	return f, nil
}
