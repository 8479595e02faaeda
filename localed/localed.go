// Package localed discovers the system keyboard layout from
// systemd-localed over D-Bus.
//
// localed exposes the X11-compatible RMLVO settings as properties on
// org.freedesktop.locale1; compositors and consoles alike are
// configured from them, which makes them the right fallback when a
// client wants a keymap without waiting for a compositor notification.
package localed

import (
	"fmt"

	"github.com/godbus/dbus/v5"

	"wlkbd/xkb"
)

const (
	busName    = "org.freedesktop.locale1"
	objectPath = "/org/freedesktop/locale1"

	propLayout  = "org.freedesktop.locale1.X11Layout"
	propModel   = "org.freedesktop.locale1.X11Model"
	propVariant = "org.freedesktop.locale1.X11Variant"
	propOptions = "org.freedesktop.locale1.X11Options"
)

// RuleNames queries the system bus for the localed keyboard settings.
// The rules field is left empty: localed does not carry it, and the
// engine default is correct.
func RuleNames() (xkb.RuleNames, error) {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return xkb.RuleNames{}, fmt.Errorf("connect system bus: %w", err)
	}
	defer conn.Close()
	return ruleNamesFromConn(conn)
}

// busObject is the subset of dbus.BusObject this package uses.
type busObject interface {
	GetProperty(p string) (dbus.Variant, error)
}

func ruleNamesFromConn(conn *dbus.Conn) (xkb.RuleNames, error) {
	return ruleNamesFromObject(conn.Object(busName, dbus.ObjectPath(objectPath)))
}

func ruleNamesFromObject(obj busObject) (xkb.RuleNames, error) {
	props := make(map[string]string, 4)
	for _, prop := range []string{propLayout, propModel, propVariant, propOptions} {
		v, err := obj.GetProperty(prop)
		if err != nil {
			return xkb.RuleNames{}, fmt.Errorf("get %s: %w", prop, err)
		}
		s, ok := v.Value().(string)
		if !ok {
			return xkb.RuleNames{}, fmt.Errorf("%s: unexpected type %T", prop, v.Value())
		}
		props[prop] = s
	}
	return ruleNamesFromProps(props), nil
}

// ruleNamesFromProps maps locale1 properties onto RMLVO names.
func ruleNamesFromProps(props map[string]string) xkb.RuleNames {
	return xkb.RuleNames{
		Model:   props[propModel],
		Layout:  props[propLayout],
		Variant: props[propVariant],
		Options: props[propOptions],
	}
}
