package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"equipx_go/models"
	"equipx_go/services"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

// ==================== 认证 ====================

func (a *app) register(ctx context.Context, args []string) error {
	fs := newFlagSet("register")
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password (min 6 characters)")
	role := fs.String("role", string(models.RoleBuyer), "seller or buyer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	account, err := a.authService().Register(ctx, models.RegisterRequest{
		Name:     *name,
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ registered %s (%s) as %s\n", account.Name, account.Email, account.Role)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := newFlagSet("login")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	role := fs.String("role", string(models.RoleBuyer), "seller or buyer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	account, err := a.authService().Login(ctx, models.LoginRequest{
		Email:    *email,
		Password: *password,
		Role:     models.Role(*role),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✅ signed in as %s (%s)\n", account.Name, account.Role)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.authService().Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "👋 signed out")
	return nil
}

func (a *app) whoami() error {
	account, err := a.creds.Account()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>\nid:   %s\nrole: %s\n", account.Name, account.Email, account.ID, account.Role)
	if exp, ok := a.creds.ExpiresAt(); ok {
		fmt.Fprintf(a.out, "token expires %s\n", exp.Format("2006-01-02 15:04"))
	}
	return nil
}

// ==================== 发布 ====================

func (a *app) listings(ctx context.Context, args []string) error {
	fs := newFlagSet("listings")
	mine := fs.Bool("mine", false, "show your own listings grouped by sale status")
	seller := fs.String("seller", "", "show the listings of this seller id")
	search := fs.String("q", "", "search by name or seller")
	condition := fs.String("condition", services.ConditionAll, "new, used, unused or all")
	sortBy := fs.String("sort", "", "price order: low-high or high-low")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m := a.listingManager()
	switch {
	case *mine:
		account, err := a.creds.Account()
		if err != nil {
			return err
		}
		if err := m.LoadForSeller(ctx, account.ID); err != nil {
			return err
		}
		a.printDashboard(m.Views())
		return nil
	case *seller != "":
		if err := m.LoadForSeller(ctx, *seller); err != nil {
			return err
		}
	default:
		if err := m.LoadAll(ctx); err != nil {
			return err
		}
	}

	filter := services.NewCatalogFilter()
	filter.SetSearch(*search)
	filter.SetCondition(*condition)
	filter.SetPriceSort(services.ParsePriceSort(*sortBy))
	a.printListings(filter.Apply(m.Listings()))
	return nil
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	name := fs.String("name", "", "equipment name")
	image := fs.String("image", "", "image URI")
	status := fs.String("status", string(models.ConditionUsed), "condition: new, used or unused")
	price := fs.Float64("price", 0, "price")
	if err := fs.Parse(args); err != nil {
		return err
	}

	item, err := a.listingManager().Create(ctx, models.EquipmentDraft{
		Name:   *name,
		Image:  *image,
		Status: models.ConditionStatus(*status),
		Price:  *price,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "📦 created %s (%s)\n", item.Name, item.ID)
	return nil
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := newFlagSet("update")
	id := fs.String("id", "", "listing id")
	name := fs.String("name", "", "new name")
	image := fs.String("image", "", "new image URI")
	status := fs.String("status", "", "new condition")
	price := fs.Float64("price", 0, "new price")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 只提交显式给出的字段
	var patch models.EquipmentPatch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "name":
			patch.Name = name
		case "image":
			patch.Image = image
		case "status":
			s := models.ConditionStatus(*status)
			patch.Status = &s
		case "price":
			patch.Price = price
		}
	})

	m, err := a.ownListings(ctx)
	if err != nil {
		return err
	}
	item, err := m.Update(ctx, *id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✏️  updated %s\n", item.ID)
	return nil
}

func (a *app) transition(ctx context.Context, verb string, args []string) error {
	fs := newFlagSet(verb)
	id := fs.String("id", "", "listing id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	target := models.SaleSold
	if verb == "archive" {
		target = models.SaleArchived
	}

	m, err := a.ownListings(ctx)
	if err != nil {
		return err
	}
	item, err := m.TransitionStatus(ctx, *id, target)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🔁 %s is now %s\n", item.ID, item.SaleStatus)
	return nil
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	id := fs.String("id", "", "listing id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.ownListings(ctx)
	if err != nil {
		return err
	}
	if err := m.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "🗑️  deleted %s\n", *id)
	return nil
}

// ownListings 加载当前卖家的发布，修改操作只作用于已加载的条目
func (a *app) ownListings(ctx context.Context) (*services.ListingManager, error) {
	account, err := a.creds.Account()
	if err != nil {
		return nil, err
	}
	m := a.listingManager()
	if err := m.LoadForSeller(ctx, account.ID); err != nil {
		return nil, err
	}
	return m, nil
}

func (a *app) printListings(items []models.Equipment) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "no listings")
		return
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCONDITION\tPRICE\tSELLER\tSTATUS")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			item.ID, item.Name, item.Status, item.Price, item.Seller, item.SaleStatus.OrDefault())
	}
	w.Flush()
}

func (a *app) printDashboard(v services.Views) {
	fmt.Fprintf(a.out, "active: %d  sold: %d  archived: %d  active value: %.2f\n\n",
		len(v.Active), len(v.Sold), len(v.Archived), v.TotalValue)
	for _, group := range []struct {
		title string
		items []models.Equipment
	}{
		{"Active", v.Active},
		{"Sold", v.Sold},
		{"Archived", v.Archived},
	} {
		if len(group.items) == 0 {
			continue
		}
		fmt.Fprintf(a.out, "== %s ==\n", group.title)
		a.printListings(group.items)
		fmt.Fprintln(a.out)
	}
}

// ==================== 聊天 ====================

func (a *app) chat(ctx context.Context, args []string) error {
	fs := newFlagSet("chat")
	equipmentID := fs.String("equipment", "", "listing id")
	counterpart := fs.String("with", "", "only show messages between you and this user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *equipmentID == "" {
		return errors.New("-equipment is required")
	}

	var (
		mu      sync.Mutex
		printed int
	)
	session := services.NewChatSession(a.api.Chats(), a.creds, services.ChatSessionConfig{
		EquipmentID:   *equipmentID,
		CounterpartID: *counterpart,
		PollInterval:  a.cfg.PollInterval,
		Logger:        a.logger,
		OnUpdate: func(messages []models.Message) {
			// 线程只会追加，重新加载时只打印新的部分
			mu.Lock()
			defer mu.Unlock()
			if printed > len(messages) {
				printed = 0
			}
			for _, m := range messages[printed:] {
				if m.Pending {
					continue
				}
				fmt.Fprintf(a.out, "[%s] %s: %s\n", m.Time().Local().Format("15:04"), m.Sender, m.Body)
				printed++
			}
		},
	})
	if err := session.Open(ctx); err != nil {
		return err
	}
	defer session.Close()

	fmt.Fprintln(a.out, "💬 type a message and press enter, /quit or Ctrl-D to leave")
	lines := make(chan string)
	go readLines(a.in, lines)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "/quit" {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := session.Send(ctx, line); err != nil {
				fmt.Fprintf(a.out, "⚠️  not sent: %v\n", err)
			}
		}
	}
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		out <- scanner.Text()
	}
}
