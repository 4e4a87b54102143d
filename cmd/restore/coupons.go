package main

import (
	"fmt"
	"path/filepath"

	"restore/internal/config"
	"restore/internal/coupon"
	"restore/internal/model"

	"github.com/spf13/cobra"
)

// sampleCouponFiles are merged in order, so a code in a later file overrides
// the same code in an earlier one.
var sampleCouponFiles = map[string][]model.Coupon{
	"coupons1.gz": {
		{Code: "WELCOME10", Name: "Welcome 10% off", PercentOff: 10},
		{Code: "SAVE5", Name: "$5 off", AmountOff: 500},
		{Code: "SUMMER2025", Name: "Summer sale", PercentOff: 15},
	},
	"coupons2.gz": {
		{Code: "FREESHIP", Name: "Delivery on us", AmountOff: 500},
		{Code: "SUMMER2025", Name: "Summer sale (extended)", PercentOff: 20},
		{Code: "BIGSPENDER", Name: "$50 off", AmountOff: 5000},
	},
}

func init() {
	// Generating files needs neither the database nor the full configuration.
	couponsCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger = config.NewLogger(config.LoggerConfig{Level: "info", Format: "console"})
		return nil
	}
}

func runCouponsGenerate(cmd *cobra.Command, args []string) error {
	for name, coupons := range sampleCouponFiles {
		path := filepath.Join(couponOutDir, name)
		if err := coupon.WriteFile(path, coupons); err != nil {
			return fmt.Errorf("failed to create %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s with %d codes\n", path, len(coupons))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nSet COUPON_FILES=%s,%s to load them\n",
		filepath.Join(couponOutDir, "coupons1.gz"), filepath.Join(couponOutDir, "coupons2.gz"))
	return nil
}
