package tool

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Accepts digits, whitespace, decimal points, operators, and parentheses.
var expressionPattern = regexp.MustCompile(`^[\d\s\+\-\*/%\^\(\)\.]+$`)

var errDivisionByZero = errors.New("cannot divide by zero")

// evaluateExpression computes an arithmetic expression with the usual
// precedence. Both "^" and "**" mean power, "//" is floor division and "%"
// takes the sign of the divisor.
func evaluateExpression(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)
	if err := validateExpression(expression); err != nil {
		return 0, err
	}

	p := &exprParser{input: expression}
	value, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.hasNext() {
		return 0, fmt.Errorf("unexpected token %q at position %d", p.peek(), p.pos)
	}
	return value, nil
}

func validateExpression(expression string) error {
	if expression == "" {
		return fmt.Errorf("expression is empty")
	}
	if !expressionPattern.MatchString(expression) {
		return fmt.Errorf("expression contains invalid characters")
	}

	depth := 0
	for _, ch := range expression {
		switch ch {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return fmt.Errorf("expression has unbalanced parentheses")
			}
		}
	}
	if depth != 0 {
		return fmt.Errorf("expression has unbalanced parentheses")
	}
	return nil
}

type exprParser struct {
	input string
	pos   int
}

func (p *exprParser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		var op byte
		switch {
		case p.match("+"):
			op = '+'
		case p.match("-"):
			op = '-'
		default:
			return left, nil
		}
		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}

	for {
		p.skipSpaces()
		var op string
		switch {
		case p.match("*"):
			op = "*"
		case p.match("//"):
			op = "//"
		case p.match("/"):
			op = "/"
		case p.match("%"):
			op = "%"
		default:
			return left, nil
		}

		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, errDivisionByZero
			}
			left /= right
		case "//":
			if right == 0 {
				return 0, errDivisionByZero
			}
			left = math.Floor(left / right)
		case "%":
			if right == 0 {
				return 0, fmt.Errorf("cannot calculate modulo by zero")
			}
			left = floorMod(left, right)
		}
	}
}

// Unary minus binds looser than power, so -2^2 is -4.
func (p *exprParser) parseUnary() (float64, error) {
	p.skipSpaces()
	if p.match("+") {
		return p.parseUnary()
	}
	if p.match("-") {
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePower()
}

func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}

	p.skipSpaces()
	if p.match("**") || p.match("^") {
		exponent, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exponent), nil
	}
	return base, nil
}

func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.match("(") {
		value, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		p.skipSpaces()
		if !p.match(")") {
			return 0, fmt.Errorf("missing closing parenthesis at position %d", p.pos)
		}
		return value, nil
	}
	return p.parseNumber()
}

func (p *exprParser) parseNumber() (float64, error) {
	p.skipSpaces()
	start := p.pos
	digits, dots := 0, 0
	for p.hasNext() {
		ch := p.peek()
		if ch >= '0' && ch <= '9' {
			digits++
		} else if ch == '.' {
			dots++
		} else {
			break
		}
		p.pos++
	}

	if digits == 0 {
		return 0, fmt.Errorf("expected number at position %d", start)
	}
	if dots > 1 {
		return 0, fmt.Errorf("invalid number format at position %d", start)
	}

	raw := p.input[start:p.pos]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	return value, nil
}

func (p *exprParser) skipSpaces() {
	for p.hasNext() {
		switch p.peek() {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *exprParser) hasNext() bool {
	return p.pos < len(p.input)
}

func (p *exprParser) peek() byte {
	return p.input[p.pos]
}

func (p *exprParser) lookingAt(token string) bool {
	return strings.HasPrefix(p.input[p.pos:], token)
}

func (p *exprParser) match(token string) bool {
	if p.lookingAt(token) {
		p.pos += len(token)
		return true
	}
	return false
}

// floorMod matches the sign convention of the divisor.
func floorMod(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
