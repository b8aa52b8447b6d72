package admin

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"arsip-api/config"
	"arsip-api/internal/apperr"
	"arsip-api/internal/auth"
	"arsip-api/internal/logs"
	"arsip-api/internal/util"
)

type AdminService struct {
	DB   *gorm.DB
	CFG  *config.Config
	Logs *logs.LogService
}

func (as *AdminService) ListUsers() ([]auth.User, error) {
	var users []auth.User
	if err := as.DB.Order("nama ASC").Find(&users).Error; err != nil {
		return nil, apperr.Storage("list users failed", err)
	}
	return users, nil
}

func (as *AdminService) CreateUser(input UserInput, actorID int64) (*auth.User, error) {
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role != auth.RoleAdmin && role != auth.RoleStaff {
		return nil, apperr.Validationf("role harus %q atau %q", auth.RoleAdmin, auth.RoleStaff)
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, apperr.Validationf("password wajib diisi")
	}

	var existing auth.User
	err := as.DB.Where("username = ?", input.Username).First(&existing).Error
	if err == nil {
		return nil, apperr.Conflictf("username %q sudah terdaftar", input.Username)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage("check duplicate failed", err)
	}

	hashed, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Storage("hash password failed", err)
	}

	user := auth.User{
		Nama:     strings.TrimSpace(input.Nama),
		Username: strings.TrimSpace(input.Username),
		Password: hashed,
		Role:     role,
	}
	err = as.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return apperr.Storage("insert user failed", err)
		}
		return as.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiBuatUser,
			Entitas:   "users",
			EntitasID: user.ID,
			Detail:    fmt.Sprintf("membuat user %q (%s)", user.Username, user.Role),
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser changes name and role, and resets the password only when a new
// one is supplied.
func (as *AdminService) UpdateUser(id int64, input UserInput, actorID int64) (*auth.User, error) {
	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role != auth.RoleAdmin && role != auth.RoleStaff {
		return nil, apperr.Validationf("role harus %q atau %q", auth.RoleAdmin, auth.RoleStaff)
	}

	var user auth.User
	if err := as.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("user %d tidak ditemukan", id)
		}
		return nil, apperr.Storage("load user failed", err)
	}

	user.Nama = strings.TrimSpace(input.Nama)
	user.Role = role
	if strings.TrimSpace(input.Password) != "" {
		hashed, err := util.HashPassword(input.Password)
		if err != nil {
			return nil, apperr.Storage("hash password failed", err)
		}
		user.Password = hashed
	}

	err := as.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&user).Error; err != nil {
			return apperr.Storage("update user failed", err)
		}
		return as.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiUbahUser,
			Entitas:   "users",
			EntitasID: user.ID,
			Detail:    fmt.Sprintf("mengubah user %q", user.Username),
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (as *AdminService) DeleteUser(id int64, actorID int64) error {
	if id == actorID {
		return apperr.Validationf("tidak dapat menghapus akun sendiri")
	}

	var user auth.User
	if err := as.DB.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFoundf("user %d tidak ditemukan", id)
		}
		return apperr.Storage("load user failed", err)
	}

	return as.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&auth.User{}, id).Error; err != nil {
			return apperr.Storage("delete user failed", err)
		}
		return as.Logs.Catat(tx, logs.LogAktivitas{
			UserID:    actorID,
			Aksi:      logs.AksiHapusUser,
			Entitas:   "users",
			EntitasID: id,
			Detail:    fmt.Sprintf("menghapus user %q", user.Username),
		})
	})
}

// Backup returns the path and suggested filename of the database snapshot.
// Only the embedded sqlite store can be copied as a file; a postgres
// deployment has to use its own dump tooling.
func (as *AdminService) Backup(actorID int64) (path string, filename string, err error) {
	if as.CFG.DBHost != "" {
		return "", "", apperr.Validationf("backup file hanya tersedia untuk database sqlite")
	}
	if _, err := os.Stat(as.CFG.DBFile); err != nil {
		return "", "", apperr.Storage("stat db file failed", err)
	}

	if err := as.Logs.Log(logs.LogAktivitas{
		UserID:  actorID,
		Aksi:    logs.AksiBackup,
		Entitas: "database",
		Detail:  fmt.Sprintf("backup database %s", as.CFG.DBFile),
	}); err != nil {
		return "", "", err
	}

	filename = fmt.Sprintf("arsip-backup-%s.db", time.Now().Format("2006-01-02"))
	return as.CFG.DBFile, filename, nil
}
