package uci

import (
	"strconv"
	"strings"
	"time"

	"github.com/benwyrosdick/lazychess/pkg/domain"
)

// Decode parses one line of engine output.
// It never fails: lines it cannot make sense of come back as domain.Unrecognized.
func Decode(line string) domain.Message {
	line = strings.TrimRight(line, "\r\n")
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Unrecognized{Line: line}
	}

	var (
		msg domain.Message
		ok  bool
	)
	switch fields[0] {
	case "info":
		msg, ok = decodeInfo(fields[1:])
	case "bestmove":
		msg, ok = decodeBestMove(fields[1:])
	case "readyok":
		msg, ok = domain.ReadyOk{}, len(fields) == 1
	case "uciok":
		msg, ok = domain.UCIOk{}, len(fields) == 1
	case "id":
		msg, ok = decodeID(fields[1:])
	case "option":
		msg, ok = decodeOption(fields[1:])
	}
	if !ok {
		return domain.Unrecognized{Line: line}
	}
	return msg
}

// decodeInfo scans the tokens after "info". Only lines with a score become SearchInfo.
func decodeInfo(fields []string) (domain.Message, bool) {
	info := domain.SearchInfo{MultiPV: 1}
	scored := false

	for i := 0; i < len(fields); i++ {
		switch fields[i] {
		case "depth":
			if !scanInt(fields, &i, &info.Depth) {
				return nil, false
			}
		case "seldepth":
			if !scanInt(fields, &i, &info.SelDepth) {
				return nil, false
			}
		case "multipv":
			if !scanInt(fields, &i, &info.MultiPV) {
				return nil, false
			}
		case "hashfull":
			if !scanInt(fields, &i, &info.HashFull) {
				return nil, false
			}
		case "nodes":
			if !scanInt64(fields, &i, &info.Nodes) {
				return nil, false
			}
		case "nps":
			if !scanInt64(fields, &i, &info.NPS) {
				return nil, false
			}
		case "time":
			var ms int64
			if !scanInt64(fields, &i, &ms) {
				return nil, false
			}
			info.Time = time.Duration(ms) * time.Millisecond
		case "score":
			if i+2 >= len(fields) {
				return nil, false
			}
			value, err := strconv.Atoi(fields[i+2])
			if err != nil {
				return nil, false
			}
			switch fields[i+1] {
			case "cp":
				info.Score = domain.Centipawns(value)
			case "mate":
				info.Score = domain.MateIn(value)
			default:
				return nil, false
			}
			scored = true
			i += 2
		case "lowerbound":
			info.Score.Bound = domain.BoundLower
		case "upperbound":
			info.Score.Bound = domain.BoundUpper
		case "pv":
			info.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		case "string":
			// free text up to the end of the line
			return nil, false
		}
	}

	if !scored {
		return nil, false
	}
	return info, true
}

func decodeBestMove(fields []string) (domain.Message, bool) {
	if len(fields) == 0 {
		return nil, false
	}
	bm := domain.BestMove{Move: fields[0]}
	for i := 1; i+1 < len(fields); i++ {
		if fields[i] == "ponder" {
			bm.Ponder = fields[i+1]
			break
		}
	}
	return bm, true
}

func decodeID(fields []string) (domain.Message, bool) {
	if len(fields) < 2 {
		return nil, false
	}
	switch fields[0] {
	case "name", "author":
		return domain.EngineID{Field: fields[0], Value: strings.Join(fields[1:], " ")}, true
	}
	return nil, false
}

// decodeOption parses "option name <words> type <t> [default <words>] [min n] [max n] [var <words>]*".
// Names and defaults may contain spaces, so values run until the next keyword.
func decodeOption(fields []string) (domain.Message, bool) {
	opt := domain.EngineOption{}
	key := ""
	var value []string

	flush := func() {
		joined := strings.Join(value, " ")
		switch key {
		case "name":
			opt.Name = joined
		case "type":
			opt.Type = joined
		case "default":
			opt.Default = joined
		case "min":
			opt.Min = joined
		case "max":
			opt.Max = joined
		case "var":
			opt.Vars = append(opt.Vars, joined)
		}
		value = value[:0]
	}

	for _, f := range fields {
		switch f {
		case "name", "type", "default", "min", "max", "var":
			// "default" may legitimately be followed by an empty value (string options)
			if key != "" {
				flush()
			}
			key = f
		default:
			value = append(value, f)
		}
	}
	if key != "" {
		flush()
	}

	if opt.Name == "" || opt.Type == "" {
		return nil, false
	}
	return opt, true
}

func scanInt(fields []string, i *int, dst *int) bool {
	if *i+1 >= len(fields) {
		return false
	}
	v, err := strconv.Atoi(fields[*i+1])
	if err != nil {
		return false
	}
	*dst = v
	*i++
	return true
}

func scanInt64(fields []string, i *int, dst *int64) bool {
	if *i+1 >= len(fields) {
		return false
	}
	v, err := strconv.ParseInt(fields[*i+1], 10, 64)
	if err != nil {
		return false
	}
	*dst = v
	*i++
	return true
}
