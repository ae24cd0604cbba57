package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"staybook/internal/booking"
	"staybook/internal/domain"
	"staybook/internal/models"
)

const dateLayout = "2006-01-02"

func (a *app) cmdHotels(ctx context.Context) error {
	hotels, err := a.gateway.ListHotels(ctx)
	if err != nil {
		return a.presentError(err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tADDRESS\tTEL\tROOMS")
	for _, h := range hotels {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", h.ID, h.Name, h.Address, h.Tel, len(h.Rooms))
	}
	return w.Flush()
}

func (a *app) cmdRooms(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rooms", flag.ContinueOnError)
	hotelID := fs.String("hotel", "", "show rooms of this hotel only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var rooms []models.Room
	if *hotelID != "" {
		hotel, err := a.gateway.GetHotel(ctx, *hotelID)
		if err != nil {
			return a.presentError(err)
		}
		rooms = hotel.Rooms
	} else {
		var err error
		rooms, err = a.gateway.ListRooms(ctx)
		if err != nil {
			return a.presentError(err)
		}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOTEL\tTYPE\tNUMBER\tPRICE\tBLOCKED PERIODS")
	for _, r := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%d\n",
			r.ID, r.HotelID, r.Type, r.Number, r.Price, len(r.UnavailablePeriods))
	}
	return w.Flush()
}

func (a *app) cmdBookings(ctx context.Context) error {
	bookings, err := a.gateway.ListBookings(ctx, a.credential)
	if err != nil {
		return a.presentError(err)
	}
	return printBookingTable(bookings)
}

func printBookingTable(bookings []models.Booking) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tHOTEL\tROOM\tCHECK-IN\tCHECK-OUT")
	for _, b := range bookings {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Hotel.Name, b.RoomID,
			b.CheckInDate.Format(dateLayout), b.CheckOutDate.Format(dateLayout))
	}
	return w.Flush()
}

func (a *app) cmdBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	roomID := fs.String("room", "", "room to book")
	checkInArg := fs.String("checkin", "", "check-in date, YYYY-MM-DD")
	checkOutArg := fs.String("checkout", "", "check-out date, YYYY-MM-DD")
	payment := fs.String("payment", models.PaymentCreditCard, "payment method")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *roomID == "" {
		return fmt.Errorf("-room is required")
	}

	checkIn, checkOut, err := parseDates(*checkInArg, *checkOutArg)
	if err != nil {
		return err
	}

	allowed, err := a.selections.CheckRateLimit(ctx, a.sessionKey,
		a.cfg.Booking.RateLimitSubmissions,
		time.Duration(a.cfg.Booking.RateLimitWindow)*time.Second)
	if err != nil {
		a.logger.Warn().Err(err).Msg("rate limit check failed")
	} else if !allowed {
		return a.presentError(domain.ErrRateLimited)
	}

	room, err := a.gateway.GetRoom(ctx, *roomID)
	if err != nil {
		return a.presentError(err)
	}
	hotel, err := a.gateway.GetHotel(ctx, room.HotelID)
	if err != nil {
		return a.presentError(err)
	}

	// The blocked periods are only advisory on this side. The backend still
	// decides, so an overlap is a warning, not a refusal.
	for _, p := range room.UnavailablePeriods {
		if p.Covers(checkIn) || p.Covers(checkOut) {
			fmt.Fprintln(os.Stderr, "Warning: the requested dates overlap a blocked period, the booking may be rejected.")
			break
		}
	}

	if _, err := a.selections.SelectHotel(ctx, a.sessionKey, hotel.Name); err != nil {
		return a.presentError(err)
	}
	if _, err := a.selections.SelectRoom(ctx, a.sessionKey, room, hotel); err != nil {
		return a.presentError(err)
	}
	if _, err := a.selections.SetDates(ctx, a.sessionKey, checkIn, checkOut); err != nil {
		return a.presentError(err)
	}
	sel, err := a.selections.SetPaymentMethod(ctx, a.sessionKey, *payment)
	if err != nil {
		return a.presentError(err)
	}

	created, err := a.coordinator.CreateFromSelection(ctx, sel, a.credential)
	if err != nil {
		return a.presentError(err)
	}

	if err := a.selections.Clear(ctx, a.sessionKey); err != nil {
		a.logger.Warn().Err(err).Msg("clear selection after booking")
	}

	fmt.Printf("Booked %s at %s: %s to %s (booking %s)\n",
		room.Type, hotel.Name,
		created.CheckInDate.Format(dateLayout), created.CheckOutDate.Format(dateLayout),
		created.ID)
	return nil
}

func (a *app) cmdUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	bookingID := fs.String("booking", "", "booking to change")
	checkInArg := fs.String("checkin", "", "new check-in date, YYYY-MM-DD")
	checkOutArg := fs.String("checkout", "", "new check-out date, YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bookingID == "" {
		return fmt.Errorf("-booking is required")
	}

	checkIn, checkOut, err := parseDates(*checkInArg, *checkOutArg)
	if err != nil {
		return err
	}

	local, err := a.gateway.ListBookings(ctx, a.credential)
	if err != nil {
		return a.presentError(err)
	}

	updated, err := a.coordinator.Update(ctx, *bookingID, checkIn, checkOut, a.credential)
	if err != nil {
		return a.presentError(err)
	}
	local = booking.ReplaceByID(local, *updated)

	fmt.Printf("Booking %s moved to %s - %s\n",
		updated.ID, updated.CheckInDate.Format(dateLayout), updated.CheckOutDate.Format(dateLayout))
	return printBookingTable(local)
}

func (a *app) cmdCancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ContinueOnError)
	bookingID := fs.String("booking", "", "booking to delete")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *bookingID == "" {
		return fmt.Errorf("-booking is required")
	}

	local, err := a.gateway.ListBookings(ctx, a.credential)
	if err != nil {
		return a.presentError(err)
	}

	if err := a.coordinator.Delete(ctx, *bookingID, a.credential); err != nil {
		return a.presentError(err)
	}
	local = booking.RemoveByID(local, *bookingID)

	fmt.Printf("Booking %s deleted\n", *bookingID)
	return printBookingTable(local)
}

func (a *app) cmdCancelPayment(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel-payment", flag.ContinueOnError)
	paymentID := fs.String("payment", "", "payment to cancel")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *paymentID == "" {
		return fmt.Errorf("-payment is required")
	}

	receipt, err := a.coordinator.CancelPayment(ctx, *paymentID, a.credential)
	if err != nil {
		return a.presentError(err)
	}

	fmt.Printf("Payment %s is now %s\n", receipt.PaymentID, receipt.Status)
	return nil
}

func (a *app) cmdExport(ctx context.Context) error {
	bookings, err := a.gateway.ListBookings(ctx, a.credential)
	if err != nil {
		return a.presentError(err)
	}

	if err := os.MkdirAll(a.cfg.Exports.Path, 0o755); err != nil {
		return err
	}

	path, err := a.exporter.Bookings(bookings)
	if err != nil {
		return err
	}

	fmt.Printf("Exported %d bookings to %s\n", len(bookings), path)
	return nil
}

func parseDates(checkInArg, checkOutArg string) (time.Time, time.Time, error) {
	if checkInArg == "" || checkOutArg == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("-checkin and -checkout are required")
	}
	checkIn, err := time.Parse(dateLayout, checkInArg)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check-in date %q: want YYYY-MM-DD", checkInArg)
	}
	checkOut, err := time.Parse(dateLayout, checkOutArg)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid check-out date %q: want YYYY-MM-DD", checkOutArg)
	}
	return checkIn, checkOut, nil
}
