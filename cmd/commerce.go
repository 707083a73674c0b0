package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vera-byte/bookmandu/pkg/model"

	"github.com/spf13/cobra"
)

var cartFlags struct {
	quantity int
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cart items and subtotal",
	Args:  cobra.NoArgs,
	RunE: guarded("/cart", func(ctx context.Context, a *app, _ []string) error {
		cart, err := a.api.Cart.Get(ctx)
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(cart.Items))
		for _, it := range cart.Items {
			rows = append(rows, []string{
				strconv.Itoa(it.CartItemID),
				strconv.Itoa(it.BookID),
				truncate(it.BookTitle, 40),
				"$" + model.FormatPrice(it.Price),
				strconv.Itoa(it.Quantity),
				"$" + model.FormatMoney(it.LineTotal()),
			})
		}
		renderTable(a.out, "Cart", []string{"Item", "Book", "Title", "Price", "Qty", "Total"}, rows)
		if len(rows) > 0 {
			fmt.Fprintf(a.out, "Subtotal: $%s (%d items)\n", model.FormatMoney(cart.Subtotal()), cart.Count())
		}
		return nil
	}),
}

var cartAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Add a book to the cart",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/cart", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("book id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Cart.Add(ctx, id, cartFlags.quantity); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Added to cart.")
		return nil
	}),
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart item",
	Args:  cobra.ExactArgs(2),
	RunE: guarded("/cart", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("cart item id", args[0])
		if err != nil {
			return err
		}
		qty, err := parseID("quantity", args[1])
		if err != nil {
			return err
		}
		if err := a.api.Cart.UpdateItem(ctx, id, qty); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cart updated.")
		return nil
	}),
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove an item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/cart", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("cart item id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Cart.Remove(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Item removed.")
		return nil
	}),
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: guarded("/cart", func(ctx context.Context, a *app, _ []string) error {
		if err := a.api.Cart.Clear(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Cart cleared.")
		return nil
	}),
}

var wishlistFlags struct {
	local bool
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist",
}

// wishlistRun --local 时操作进程内收藏夹，不需要登录
func wishlistRun(local, remote runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if wishlistFlags.local {
			return connected(local)(cmd, args)
		}
		return guarded("/wishlist", remote)(cmd, args)
	}
}

func renderWishlist(a *app, items []model.WishlistItem) {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, []string{strconv.Itoa(it.BookID), truncate(it.BookTitle, 40), it.AuthorName, "$" + model.FormatPrice(it.Price)})
	}
	renderTable(a.out, "Wishlist", []string{"Book", "Title", "Author", "Price"}, rows)
}

var wishlistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the wishlist",
	Args:  cobra.NoArgs,
	RunE: wishlistRun(
		func(_ context.Context, a *app, _ []string) error {
			renderWishlist(a, a.local.Items())
			return nil
		},
		func(ctx context.Context, a *app, _ []string) error {
			items, err := a.api.Wishlist.List(ctx)
			if err != nil {
				return err
			}
			renderWishlist(a, items)
			return nil
		},
	),
}

var wishlistAddCmd = &cobra.Command{
	Use:   "add <book-id>",
	Short: "Add a book to the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistRun(
		func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			b, err := a.api.Books.Get(ctx, id)
			if err != nil {
				return err
			}
			if !a.local.AddBook(*b) {
				fmt.Fprintln(a.out, "Already in your wishlist.")
				return nil
			}
			fmt.Fprintln(a.out, "Added to wishlist.")
			return nil
		},
		func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			if err := a.api.Wishlist.Add(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Added to wishlist.")
			return nil
		},
	),
}

var wishlistRemoveCmd = &cobra.Command{
	Use:   "remove <book-id>",
	Short: "Remove a book from the wishlist",
	Args:  cobra.ExactArgs(1),
	RunE: wishlistRun(
		func(_ context.Context, a *app, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			if !a.local.Remove(id) {
				fmt.Fprintln(a.out, "Not in your wishlist.")
				return nil
			}
			fmt.Fprintln(a.out, "Removed from wishlist.")
			return nil
		},
		func(ctx context.Context, a *app, args []string) error {
			id, err := parseID("book id", args[0])
			if err != nil {
				return err
			}
			if err := a.api.Wishlist.Remove(ctx, id); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Removed from wishlist.")
			return nil
		},
	),
}

var orderFlags struct {
	street  string
	city    string
	state   string
	zip     string
	country string
}

var orderCmd = &cobra.Command{
	Use:     "order",
	Aliases: []string{"orders"},
	Short:   "Place and track orders",
}

var orderPlaceCmd = &cobra.Command{
	Use:   "place",
	Short: "Place an order from the current cart",
	Args:  cobra.NoArgs,
	RunE: guarded("/order", func(ctx context.Context, a *app, _ []string) error {
		var (
			addr model.Address
			err  error
		)
		if addr.Street, err = a.orPrompt(orderFlags.street, "Street: "); err != nil {
			return err
		}
		if addr.City, err = a.orPrompt(orderFlags.city, "City: "); err != nil {
			return err
		}
		addr.State, addr.ZipCode = orderFlags.state, orderFlags.zip
		if addr.Country, err = a.orPrompt(orderFlags.country, "Country: "); err != nil {
			return err
		}

		order, err := a.api.Orders.Place(ctx, model.PlaceOrderRequest{ShippingAddress: addr})
		if err != nil {
			return err
		}
		renderFields(a.out, "Order placed", [][2]string{
			{"Order", strconv.Itoa(order.OrderID)},
			{"Total", "$" + model.FormatPrice(order.TotalPrice)},
			{"Status", order.Status},
			{"Claim code", order.ClaimCode},
		})
		fmt.Fprintln(a.out, "Show the claim code and your membership ID at the counter to pick up your books.")
		return nil
	}),
}

func renderOrders(a *app, title string, orders []model.Order) {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.Itoa(o.OrderID),
			model.FormatDateTime(o.OrderDate),
			strconv.Itoa(len(o.Items)),
			"$" + model.FormatPrice(o.TotalPrice),
			o.Status,
			o.ClaimCode,
		})
	}
	renderTable(a.out, title, []string{"Order", "Date", "Lines", "Total", "Status", "Claim code"}, rows)
}

var orderListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your orders",
	Args:  cobra.NoArgs,
	RunE: guarded("/order", func(ctx context.Context, a *app, _ []string) error {
		orders, err := a.api.Orders.List(ctx)
		if err != nil {
			return err
		}
		renderOrders(a, "Orders", orders)
		return nil
	}),
}

var orderCompletedCmd = &cobra.Command{
	Use:   "completed",
	Short: "List picked-up orders, the ones you can review",
	Args:  cobra.NoArgs,
	RunE: guarded("/order", func(ctx context.Context, a *app, _ []string) error {
		orders, err := a.api.Orders.Completed(ctx)
		if err != nil {
			return err
		}
		renderOrders(a, "Completed orders", orders)
		return nil
	}),
}

var orderShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an order",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/order", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		o, err := a.api.Orders.Get(ctx, id)
		if err != nil {
			return err
		}
		renderOrders(a, "Order", []model.Order{*o})
		rows := make([][]string, 0, len(o.Items))
		for _, it := range o.Items {
			rows = append(rows, []string{strconv.Itoa(it.BookID), truncate(it.BookTitle, 40), "$" + model.FormatPrice(it.Price), strconv.Itoa(it.Quantity)})
		}
		renderTable(a.out, "Items", []string{"Book", "Title", "Price", "Qty"}, rows)
		return nil
	}),
}

var orderCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a pending order",
	Args:  cobra.ExactArgs(1),
	RunE: guarded("/order", func(ctx context.Context, a *app, args []string) error {
		id, err := parseID("order id", args[0])
		if err != nil {
			return err
		}
		if err := a.api.Orders.Cancel(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Order cancelled.")
		return nil
	}),
}

func init() {
	cartAddCmd.Flags().IntVarP(&cartFlags.quantity, "quantity", "q", 1, "quantity")
	cartCmd.AddCommand(cartShowCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd)

	wishlistCmd.PersistentFlags().BoolVar(&wishlistFlags.local, "local", false, "use the in-process wishlist, no login needed")
	wishlistCmd.AddCommand(wishlistShowCmd, wishlistAddCmd, wishlistRemoveCmd)

	pf := orderPlaceCmd.Flags()
	pf.StringVar(&orderFlags.street, "street", "", "shipping street")
	pf.StringVar(&orderFlags.city, "city", "", "shipping city")
	pf.StringVar(&orderFlags.state, "state", "", "shipping state")
	pf.StringVar(&orderFlags.zip, "zip", "", "shipping zip code")
	pf.StringVar(&orderFlags.country, "country", "", "shipping country")
	orderCmd.AddCommand(orderPlaceCmd, orderListCmd, orderShowCmd, orderCancelCmd, orderCompletedCmd)

	RootCmd.AddCommand(cartCmd, wishlistCmd, orderCmd)
}
