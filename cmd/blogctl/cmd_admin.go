package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tagpress/internal/db"
	"github.com/tagpress/internal/service"
	"gorm.io/gorm"
)

var (
	adminUsername string
	adminPassword string
)

// createAdminCmd creates an administrator account
var createAdminCmd = &cobra.Command{
	Use:   "createadmin",
	Short: "Create an administrator account",
	Long: `Create an administrator account with a bcrypt hashed password.

Existing accounts are left untouched.

Example:
  blogctl createadmin --username admin --password s3cret`,
	RunE: runCreateAdmin,
}

// publishCmd publishes a draft
var publishCmd = &cobra.Command{
	Use:   "publish [post-id]",
	Short: "Publish a draft post",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublish,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "administrator user name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "administrator password")
	_ = createAdminCmd.MarkFlagRequired("password")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	gdb, err := openDatabase()
	if err != nil {
		return err
	}
	return createAdmin(gdb, cmd.OutOrStdout(), adminUsername, adminPassword)
}

func createAdmin(gdb *gorm.DB, out io.Writer, username, password string) error {
	var before int64
	if err := gdb.Model(&db.User{}).Where("username = ?", username).Count(&before).Error; err != nil {
		return err
	}

	user, err := db.EnsureUser(gdb, username, password)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	if user == nil {
		return errors.New("username and password must not be empty")
	}

	if before > 0 {
		fmt.Fprintf(out, "用户 %s 已存在，无需创建\n", user.Username)
		return nil
	}
	fmt.Fprintf(out, "管理员用户 %s 创建成功\n", user.Username)
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid post id %q", args[0])
	}

	gdb, err := openDatabase()
	if err != nil {
		return err
	}

	post, err := service.NewPostService(gdb).Publish(uint(id))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %q at %s\n", post.Title, post.AbsoluteURL())
	return nil
}
