package reader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var ErrMalformedLine = errors.New("malformed line")

// TextInput is the parsed line-oriented format: a count followed by that
// many base lines, then a count followed by that many stat lines.
type TextInput struct {
	BaseRequests []BaseRequest
	StatRequests []StatRequest
}

// ParseText reads the text format. Stat requests get ids 1, 2, ... in input
// order.
func ParseText(r io.Reader) (*TextInput, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0

	nextLine := func() (string, bool) {
		for scanner.Scan() {
			lineNo++
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				return line, true
			}
		}
		return "", false
	}

	readCount := func(section string) (int, error) {
		line, ok := nextLine()
		if !ok {
			return 0, fmt.Errorf("%s section: missing request count", section)
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("line %d: %w: bad request count %q", lineNo, ErrMalformedLine, line)
		}
		return n, nil
	}

	input := &TextInput{}

	baseCount, err := readCount("base")
	if err != nil {
		return nil, err
	}
	for i := 0; i < baseCount; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, fmt.Errorf("base section: expected %d requests, got %d", baseCount, i)
		}
		req, err := parseBaseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		input.BaseRequests = append(input.BaseRequests, req)
	}

	statCount, err := readCount("stat")
	if err != nil {
		return nil, err
	}
	for i := 0; i < statCount; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, fmt.Errorf("stat section: expected %d requests, got %d", statCount, i)
		}
		req, err := parseStatLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		req.ID = i + 1
		input.StatRequests = append(input.StatRequests, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading text input: %w", err)
	}
	return input, nil
}

// splitCommand splits "Kind rest" into its two parts.
func splitCommand(line string) (kind, rest string) {
	kind, rest, _ = strings.Cut(line, " ")
	return kind, strings.TrimSpace(rest)
}

func parseBaseLine(line string) (BaseRequest, error) {
	kind, rest := splitCommand(line)
	name, body, ok := strings.Cut(rest, ":")
	if !ok {
		return BaseRequest{}, fmt.Errorf("%w: no colon in %q", ErrMalformedLine, line)
	}
	name = strings.TrimSpace(name)

	switch kind {
	case TypeStop:
		return parseStop(name, body)
	case TypeBus:
		return parseBus(name, body), nil
	}
	return BaseRequest{}, fmt.Errorf("%w: %q", ErrUnknownRequestType, kind)
}

// parseStop reads "lat, lng[, Dm to Other]...".
func parseStop(name, body string) (BaseRequest, error) {
	parts := strings.Split(body, ",")
	if len(parts) < 2 {
		return BaseRequest{}, fmt.Errorf("%w: stop %q needs latitude and longitude", ErrMalformedLine, name)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return BaseRequest{}, fmt.Errorf("%w: stop %q latitude: %v", ErrMalformedLine, name, err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return BaseRequest{}, fmt.Errorf("%w: stop %q longitude: %v", ErrMalformedLine, name, err)
	}

	req := BaseRequest{Type: TypeStop, Name: name, Latitude: lat, Longitude: lng}
	for _, part := range parts[2:] {
		meters, other, ok := strings.Cut(strings.TrimSpace(part), "m to ")
		if !ok {
			return BaseRequest{}, fmt.Errorf("%w: stop %q distance %q", ErrMalformedLine, name, part)
		}
		d, err := strconv.Atoi(strings.TrimSpace(meters))
		if err != nil {
			return BaseRequest{}, fmt.Errorf("%w: stop %q distance %q", ErrMalformedLine, name, part)
		}
		if req.RoadDistances == nil {
			req.RoadDistances = make(map[string]int)
		}
		req.RoadDistances[strings.TrimSpace(other)] = d
	}
	return req, nil
}

// parseBus reads "A > B > A" (circular) or "A - B - C" (linear).
func parseBus(number, body string) BaseRequest {
	sep, circular := " - ", false
	if strings.Contains(body, ">") {
		sep, circular = ">", true
	}

	var stops []string
	for _, name := range strings.Split(body, sep) {
		if name = strings.TrimSpace(name); name != "" {
			stops = append(stops, name)
		}
	}
	return BaseRequest{Type: TypeBus, Name: number, Stops: stops, IsRoundtrip: circular}
}

func parseStatLine(line string) (StatRequest, error) {
	kind, name := splitCommand(line)
	switch kind {
	case TypeBus, TypeStop:
		if name == "" {
			return StatRequest{}, fmt.Errorf("%w: %q has no name", ErrMalformedLine, line)
		}
		return StatRequest{Type: kind, Name: name}, nil
	}
	return StatRequest{}, fmt.Errorf("%w: %q", ErrUnknownRequestType, kind)
}

// FormatText renders the answer to req the way the text format prints it.
func FormatText(req StatRequest, resp any) string {
	prefix := req.Type + " " + req.Name + ": "
	switch r := resp.(type) {
	case ErrorResponse:
		return prefix + r.ErrorMessage
	case BusResponse:
		return fmt.Sprintf("%s%d stops on route, %d unique stops, %d route length, %.6g curvature",
			prefix, r.StopCount, r.UniqueStopCount, r.RouteLength, r.Curvature)
	case StopResponse:
		if len(r.Buses) == 0 {
			return prefix + "no buses"
		}
		return prefix + "buses " + strings.Join(r.Buses, " ")
	}
	return prefix + NotFound
}

// WriteText prints one line per answered request.
func WriteText(w io.Writer, reqs []StatRequest, responses []any) error {
	bw := bufio.NewWriter(w)
	for i, req := range reqs {
		if _, err := fmt.Fprintln(bw, FormatText(req, responses[i])); err != nil {
			return fmt.Errorf("error writing response: %w", err)
		}
	}
	return bw.Flush()
}
