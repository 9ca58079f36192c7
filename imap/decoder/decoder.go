// Package decoder turns complete server lines into response values.
package decoder

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/ProtonMail/photon/imap/response"
	"github.com/ProtonMail/photon/rfcparser"
	"github.com/emersion/go-imap/utf7"
)

// Decode decodes one complete server line, literals inlined and CRLF included.
// Exactly one of the returned values is set on success.
func Decode(line []byte) (response.Response, response.ContinuationRequest, error) {
	p := rfcparser.NewParser(rfcparser.NewScanner(bytes.NewReader(line)))

	if err := p.Advance(); err != nil {
		return nil, nil, err
	}

	switch {
	case p.Check(rfcparser.TokenTypePlus):
		req, err := decodeContinuation(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode continuation request: %w", err)
		}

		return nil, req, nil

	case p.Check(rfcparser.TokenTypeAsterisk):
		res, err := decodeUntagged(p, line)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode untagged response: %w", err)
		}

		return res, nil, nil

	default:
		res, err := decodeTagged(p)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode tagged response: %w", err)
		}

		return res, nil, nil
	}
}

func decodeContinuation(p *rfcparser.Parser) (response.ContinuationRequest, error) {
	/*
		continue-req    = "+" SP (resp-text / base64) CRLF
	*/
	if err := p.Consume(rfcparser.TokenTypePlus, "expected '+'"); err != nil {
		return nil, err
	}

	// Some servers omit the space when there is nothing to say.
	if _, err := p.Matches(rfcparser.TokenTypeSP); err != nil {
		return nil, err
	}

	code, text, err := parseRespText(p)
	if err != nil {
		return nil, err
	}

	if err := p.ConsumeNewLine(); err != nil {
		return nil, err
	}

	if code == "" && text != "" {
		if data, err := base64.StdEncoding.Strict().DecodeString(text); err == nil {
			return &response.ContinuationData{Data: data}, nil
		}
	}

	return &response.ContinuationText{Code: code, Text: text}, nil
}

func decodeUntagged(p *rfcparser.Parser, line []byte) (response.Response, error) {
	if err := p.Consume(rfcparser.TokenTypeAsterisk, "expected '*'"); err != nil {
		return nil, err
	}

	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after '*'"); err != nil {
		return nil, err
	}

	if p.Check(rfcparser.TokenTypeDigit) {
		return decodeMessageData(p, line)
	}

	name, err := p.ParseAtom()
	if err != nil {
		return nil, err
	}

	name = strings.ToUpper(name)

	if name == "LIST" || name == "LSUB" {
		return decodeList(p, name)
	}

	var code, text string

	if ok, err := p.Matches(rfcparser.TokenTypeSP); err != nil {
		return nil, err
	} else if ok {
		switch name {
		case "OK", "NO", "BAD", "BYE", "PREAUTH":
			if code, text, err = parseRespText(p); err != nil {
				return nil, err
			}

		default:
			if text, err = p.ParseText(); err != nil {
				return nil, err
			}
		}
	}

	if err := p.ConsumeNewLine(); err != nil {
		return nil, err
	}

	if name == "BYE" {
		return &response.Fatal{Code: code, Text: text}, nil
	}

	return &response.Untagged{Name: name, Code: code, Text: text}, nil
}

func decodeMessageData(p *rfcparser.Parser, line []byte) (response.Response, error) {
	/*
		message-data    = nz-number SP ("EXPUNGE" / ("FETCH" SP msg-att))
		mailbox-data    =/ number SP "EXISTS" / number SP "RECENT"
	*/
	number, err := p.ParseNumber()
	if err != nil {
		return nil, err
	}

	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after number"); err != nil {
		return nil, err
	}

	name, err := p.ParseAtom()
	if err != nil {
		return nil, err
	}

	name = strings.ToUpper(name)

	if name == "FETCH" {
		if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after FETCH"); err != nil {
			return nil, err
		}

		// The attribute list may carry literals; keep it verbatim for callers to interpret.
		start := p.CurrentToken().Offset - 1

		if !bytes.HasSuffix(line, []byte("\r\n")) || start >= len(line)-2 {
			return nil, p.MakeError("expected FETCH attributes")
		}

		return &response.Fetch{SeqNum: uint32(number), Data: line[start : len(line)-2]}, nil
	}

	var text string

	if ok, err := p.Matches(rfcparser.TokenTypeSP); err != nil {
		return nil, err
	} else if ok {
		if text, err = p.ParseText(); err != nil {
			return nil, err
		}
	}

	if err := p.ConsumeNewLine(); err != nil {
		return nil, err
	}

	return &response.Untagged{Name: name, Number: uint32(number), HasNumber: true, Text: text}, nil
}

func decodeTagged(p *rfcparser.Parser) (response.Response, error) {
	/*
		response-tagged = tag SP resp-cond-state CRLF
		resp-cond-state = ("OK" / "NO" / "BAD") SP resp-text
	*/
	tag, err := p.ParseTag()
	if err != nil {
		return nil, err
	}

	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after tag"); err != nil {
		return nil, err
	}

	status, err := p.ParseAtom()
	if err != nil {
		return nil, err
	}

	res := &response.Tagged{Tag: tag, Status: response.Status(strings.ToUpper(status))}

	switch res.Status {
	case response.StatusOK, response.StatusNo, response.StatusBad:

	default:
		return nil, p.MakeError(fmt.Sprintf("unknown status %q", status))
	}

	if ok, err := p.Matches(rfcparser.TokenTypeSP); err != nil {
		return nil, err
	} else if ok {
		if res.Code, res.Text, err = parseRespText(p); err != nil {
			return nil, err
		}
	}

	if err := p.ConsumeNewLine(); err != nil {
		return nil, err
	}

	return res, nil
}

// parseRespText parses an optional bracketed response code followed by free text.
func parseRespText(p *rfcparser.Parser) (string, string, error) {
	/*
		resp-text       = ["[" resp-text-code "]" SP] text
	*/
	var code string

	if ok, err := p.Matches(rfcparser.TokenTypeLBracket); err != nil {
		return "", "", err
	} else if ok {
		raw, err := p.CollectBytesWhileMatchesWith(func(tt rfcparser.TokenType) bool {
			return tt != rfcparser.TokenTypeRBracket && !rfcparser.IsCTL(tt) && tt != rfcparser.TokenTypeEOF
		})
		if err != nil {
			return "", "", err
		}

		if err := p.Consume(rfcparser.TokenTypeRBracket, "expected ']' after response code"); err != nil {
			return "", "", err
		}

		if _, err := p.Matches(rfcparser.TokenTypeSP); err != nil {
			return "", "", err
		}

		code = string(raw)
	}

	text, err := p.ParseText()
	if err != nil {
		return "", "", err
	}

	return code, text, nil
}

func decodeList(p *rfcparser.Parser, name string) (response.Response, error) {
	/*
		mailbox-list    = "(" [mbx-list-flags] ")" SP
		                  (DQUOTE QUOTED-CHAR DQUOTE / nil) SP mailbox
	*/
	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after "+name); err != nil {
		return nil, err
	}

	attributes, err := parseListAttributes(p)
	if err != nil {
		return nil, err
	}

	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after attributes"); err != nil {
		return nil, err
	}

	var delimiter string

	if p.Check(rfcparser.TokenTypeDQuote) {
		if delimiter, err = p.ParseQuoted(); err != nil {
			return nil, err
		}
	} else if err := p.ConsumeBytesFold('N', 'I', 'L'); err != nil {
		return nil, err
	}

	if err := p.Consume(rfcparser.TokenTypeSP, "expected SP after delimiter"); err != nil {
		return nil, err
	}

	mailbox, err := parseAString(p)
	if err != nil {
		return nil, err
	}

	if err := p.ConsumeNewLine(); err != nil {
		return nil, err
	}

	// Names that are not valid modified UTF-7 are kept as sent.
	if decoded, err := utf7.Encoding.NewDecoder().String(mailbox); err == nil {
		mailbox = decoded
	}

	return &response.List{Name: name, Attributes: attributes, Delimiter: delimiter, Mailbox: mailbox}, nil
}

func parseListAttributes(p *rfcparser.Parser) ([]string, error) {
	if err := p.Consume(rfcparser.TokenTypeLParen, "expected '(' for attributes"); err != nil {
		return nil, err
	}

	var attributes []string

	for !p.Check(rfcparser.TokenTypeRParen) {
		if len(attributes) > 0 {
			if err := p.Consume(rfcparser.TokenTypeSP, "expected SP between attributes"); err != nil {
				return nil, err
			}
		}

		var prefix string

		if ok, err := p.Matches(rfcparser.TokenTypeBackslash); err != nil {
			return nil, err
		} else if ok {
			prefix = `\`
		}

		atom, err := p.ParseAtom()
		if err != nil {
			return nil, err
		}

		attributes = append(attributes, prefix+atom)
	}

	if err := p.Consume(rfcparser.TokenTypeRParen, "expected ')' after attributes"); err != nil {
		return nil, err
	}

	return attributes, nil
}

func parseAString(p *rfcparser.Parser) (string, error) {
	/*
		astring         = 1*ASTRING-CHAR / string
		string          = quoted / literal
	*/
	switch {
	case p.Check(rfcparser.TokenTypeDQuote):
		return p.ParseQuoted()

	case p.Check(rfcparser.TokenTypeLCurly):
		literal, err := p.ParseLiteral()
		if err != nil {
			return "", err
		}

		return string(literal), nil

	default:
		astring, err := p.CollectBytesWhileMatchesWith(rfcparser.IsAStringChar)
		if err != nil {
			return "", err
		}

		if len(astring) == 0 {
			return "", p.MakeError("expected astring")
		}

		return string(astring), nil
	}
}
