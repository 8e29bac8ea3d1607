package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gudang/internal/model"
	"gudang/internal/service"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const menuText = `
=== Inventory ===
1. Add product
2. List products
3. Update product
4. Delete product
5. Search product by name
6. Filter products by minimum price
0. Exit`

// Menu is the interactive numbered menu. It reads answers line by line from in
// and ends on option 0 or when the input is exhausted.
type Menu struct {
	ops    *operations
	in     *bufio.Scanner
	out    io.Writer
	logger zerolog.Logger
}

// NewMenu creates a menu reading from in and printing to out.
func NewMenu(products service.ProductService, in io.Reader, out io.Writer, logger zerolog.Logger) *Menu {
	logger = logger.With().Str("component", "menu").Logger()
	return &Menu{
		ops:    newOperations(products, out, logger),
		in:     bufio.NewScanner(in),
		out:    out,
		logger: logger,
	}
}

// Run shows the menu until the operator exits. Operation failures are reported
// on out and do not stop the loop.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(m.out, menuText)
		choice, ok := m.readLine("Choose an option: ")
		if !ok {
			fmt.Fprintln(m.out)
			m.logger.Debug().Msg("input closed, leaving menu")
			return nil
		}

		var done bool
		switch choice {
		case "1":
			done = m.add(ctx)
		case "2":
			_ = m.ops.list(ctx)
		case "3":
			done = m.update(ctx)
		case "4":
			done = m.delete(ctx)
		case "5":
			done = m.search(ctx)
		case "6":
			done = m.filter(ctx)
		case "0":
			fmt.Fprintln(m.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option.")
		}

		if done {
			fmt.Fprintln(m.out)
			return nil
		}
	}
}

// The flow methods below return true when input ran out mid-flow.

func (m *Menu) add(ctx context.Context) bool {
	in, ok := m.readProductInput()
	if !ok {
		return true
	}
	_ = m.ops.add(ctx, in)
	return false
}

func (m *Menu) update(ctx context.Context) bool {
	id, ok := m.readInt("Product ID to update: ")
	if !ok {
		return true
	}
	in, ok := m.readProductInput()
	if !ok {
		return true
	}
	_ = m.ops.update(ctx, id, in)
	return false
}

func (m *Menu) delete(ctx context.Context) bool {
	id, ok := m.readInt("Product ID to delete: ")
	if !ok {
		return true
	}
	_ = m.ops.delete(ctx, id)
	return false
}

func (m *Menu) search(ctx context.Context) bool {
	keyword, ok := m.readLine("Keyword: ")
	if !ok {
		return true
	}
	_ = m.ops.search(ctx, keyword)
	return false
}

func (m *Menu) filter(ctx context.Context) bool {
	minPrice, ok := m.readDecimal("Minimum price: ")
	if !ok {
		return true
	}
	_ = m.ops.filter(ctx, minPrice)
	return false
}

func (m *Menu) readProductInput() (model.ProductInput, bool) {
	var in model.ProductInput

	name, ok := m.readLine("Name: ")
	if !ok {
		return in, false
	}
	quantity, ok := m.readInt("Quantity: ")
	if !ok {
		return in, false
	}
	price, ok := m.readDecimal("Price: ")
	if !ok {
		return in, false
	}

	in.Name = name
	in.Quantity = quantity
	in.Price = price
	return in, true
}

// readLine prints prompt and returns the next trimmed line. ok is false at end of input.
func (m *Menu) readLine(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// readInt prompts until the answer parses as an integer.
func (m *Menu) readInt(prompt string) (int, bool) {
	for {
		line, ok := m.readLine(prompt)
		if !ok {
			return 0, false
		}
		n, err := strconv.Atoi(line)
		if err == nil {
			return n, true
		}
		fmt.Fprintln(m.out, "Please enter a whole number.")
	}
}

// readDecimal prompts until the answer parses as a decimal number.
func (m *Menu) readDecimal(prompt string) (decimal.Decimal, bool) {
	for {
		line, ok := m.readLine(prompt)
		if !ok {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(line)
		if err == nil {
			return d, true
		}
		fmt.Fprintln(m.out, "Please enter a number, for example 2.5.")
	}
}
