package ganetitest

// Canned RAPI documents, as returned by a Ganeti 2.2 / 2.4 test cluster.
const (
	Instance = `{
  "admin_state": false,
  "beparams": {
    "auto_balance": true,
    "memory": 512,
    "vcpus": 2
  },
  "ctime": 1285799513.4741,
  "disk.sizes": [
    5120
  ],
  "disk_template": "plain",
  "disk_usage": 5120,
  "hvparams": {
    "acpi": true,
    "boot_order": "disk",
    "cdrom_image_path": "",
    "disk_cache": "default",
    "disk_type": "paravirtual",
    "initrd_path": "",
    "kernel_args": "ro",
    "kernel_path": "/root/bzImage",
    "kvm_flag": "",
    "mem_path": "",
    "migration_downtime": 30,
    "nic_type": "paravirtual",
    "root_path": "/dev/vda2",
    "security_domain": "",
    "security_model": "none",
    "serial_console": true,
    "usb_mouse": "",
    "use_chroot": false,
    "use_localtime": false,
    "vhost_net": false,
    "vnc_bind_address": "0.0.0.0",
    "vnc_password_file": "",
    "vnc_tls": false,
    "vnc_x509_path": "",
    "vnc_x509_verify": false
  },
  "mtime": 1285883187.8692,
  "name": "gimager.example.bak",
  "network_port": 11165,
  "nic.bridges": [
    "br42"
  ],
  "nic.ips": [
    null
  ],
  "nic.links": [
    "br42"
  ],
  "nic.macs": [
    "aa:00:00:c5:47:2e"
  ],
  "nic.modes": [
    "bridged"
  ],
  "oper_ram": "-",
  "oper_state": false,
  "oper_vcpus": "-",
  "os": "image+gentoo-hardened-cf",
  "pnode": "gtest1.example.bak",
  "serial_no": 8,
  "snodes": [],
  "status": "running",
  "tags": [],
  "uuid": "27bac3d3-f634-4dee-aa60-ed2eeb5f2287"
}`

	XenHVMInstance = `{
  "admin_state": false,
  "beparams": {
    "auto_balance": true,
    "memory": 512,
    "vcpus": 2
  },
  "ctime": 1304546866.803153,
  "custom_beparams": {
    "memory": 512,
    "vcpus": 2
  },
  "custom_hvparams": {
    "boot_order": "c",
    "cdrom_image_path": "",
    "disk_type": "paravirtual",
    "nic_type": "rtl8139"
  },
  "custom_nicparams": [
    {
      "link": "br42",
      "mode": "bridged"
    }
  ],
  "disk.sizes": [
    1024
  ],
  "disk_template": "plain",
  "disk_usage": 1024,
  "hvparams": {
    "acpi": true,
    "blockdev_prefix": "hd",
    "boot_order": "c",
    "cdrom_image_path": "",
    "device_model": "/usr/lib/xen/bin/qemu-dm",
    "disk_type": "paravirtual",
    "kernel_path": "/usr/lib/xen/boot/hvmloader",
    "nic_type": "rtl8139",
    "pae": true,
    "use_localtime": false,
    "vnc_bind_address": "0.0.0.0",
    "vnc_password_file": "/etc/ganeti/vnc-cluster-password"
  },
  "mtime": 1305055017.671782,
  "name": "hvm.example",
  "network_port": 11003,
  "nic.bridges": [
    "br42"
  ],
  "nic.ips": [
    null
  ],
  "nic.links": [
    "br42"
  ],
  "nic.macs": [
    "aa:00:00:c5:47:2e"
  ],
  "nic.modes": [
    "bridged"
  ],
  "oper_ram": null,
  "oper_state": false,
  "oper_vcpus": null,
  "os": "debootstrap+default",
  "pnode": "gtest3.example.bak",
  "serial_no": 5,
  "snodes": [],
  "status": "ADMIN_down",
  "tags": [],
  "uuid": "4e4241fd-8aa1-4efb-b378-69e658c480f7"
}`

	XenPVMInstance = `{
  "admin_state": false,
  "beparams": {
    "auto_balance": true,
    "memory": 512,
    "vcpus": 2
  },
  "ctime": 1304546944.35018,
  "custom_beparams": {
    "memory": 512,
    "vcpus": 2
  },
  "custom_hvparams": {
    "kernel_path": "/boot/vmlinuz-2.6-xenU",
    "root_path": "/dev/xvda1"
  },
  "custom_nicparams": [
    {
      "link": "br42",
      "mode": "bridged"
    }
  ],
  "disk.sizes": [
    1024
  ],
  "disk_template": "plain",
  "disk_usage": 1024,
  "hvparams": {
    "blockdev_prefix": "sd",
    "bootloader_args": "",
    "bootloader_path": "",
    "initrd_path": "/boot/initrd-2.6-xenU",
    "kernel_args": "ro",
    "kernel_path": "/boot/vmlinuz-2.6-xenU",
    "root_path": "/dev/xvda1",
    "use_bootloader": false
  },
  "mtime": 1305055018.466931,
  "name": "pvm.example",
  "network_port": null,
  "nic.bridges": [
    "br42"
  ],
  "nic.ips": [
    null
  ],
  "nic.links": [
    "br42"
  ],
  "nic.macs": [
    "aa:00:00:c5:47:2e"
  ],
  "nic.modes": [
    "bridged"
  ],
  "oper_ram": null,
  "oper_state": false,
  "oper_vcpus": null,
  "os": "debootstrap+default",
  "pnode": "gtest3.example.bak",
  "serial_no": 5,
  "snodes": [],
  "status": "ADMIN_down",
  "tags": [],
  "uuid": "4b570908-6094-4dab-bbb0-b67aab517128"
}`

	Instances = `[
  "gimager.example.bak",
  "gimager2.example.bak"
]`

	InstancesBulk = `[
  {
    "admin_state": false,
    "beparams": {
      "auto_balance": true,
      "memory": 512,
      "vcpus": 2
    },
    "ctime": 1285799513.474109,
    "disk.sizes": [
      5120
    ],
    "disk_template": "plain",
    "disk_usage": 5120,
    "hvparams": {
      "acpi": true,
      "boot_order": "disk",
      "cdrom_image_path": "",
      "disk_cache": "default",
      "disk_type": "paravirtual",
      "initrd_path": "",
      "kernel_args": "ro",
      "kernel_path": "/root/bzImage",
      "kvm_flag": "",
      "migration_downtime": 30,
      "nic_type": "paravirtual",
      "root_path": "/dev/vda2",
      "security_domain": "",
      "security_model": "none",
      "serial_console": true,
      "usb_mouse": "",
      "use_chroot": false,
      "use_localtime": false,
      "vhost_net": false,
      "vnc_bind_address": "0.0.0.0",
      "vnc_password_file": "",
      "vnc_tls": false,
      "vnc_x509_path": "",
      "vnc_x509_verify": false
    },
    "mtime": 1285883187.8692,
    "name": "vm1.example.bak",
    "network_port": 11165,
    "nic.bridges": [
      "br42"
    ],
    "nic.ips": [
      null
    ],
    "nic.links": [
      "br42"
    ],
    "nic.macs": [
      "aa:00:00:c5:47:2e"
    ],
    "nic.modes": [
      "bridged"
    ],
    "oper_ram": "-",
    "oper_state": false,
    "oper_vcpus": "-",
    "os": "image+gentoo-hardened-cf",
    "pnode": "gtest1.example.bak",
    "serial_no": 8,
    "snodes": [],
    "status": "running",
    "tags": [],
    "uuid": "27bac3d3-f634-4dee-aa60-ed2eeb5f2287"
  },
  {
    "admin_state": false,
    "beparams": {
      "auto_balance": true,
      "memory": 512,
      "vcpus": 2
    },
    "ctime": 1285799513.474109,
    "disk.sizes": [
      5120
    ],
    "disk_template": "plain",
    "disk_usage": 5120,
    "hvparams": {
      "acpi": true,
      "boot_order": "disk",
      "cdrom_image_path": "",
      "disk_cache": "default",
      "disk_type": "paravirtual",
      "initrd_path": "",
      "kernel_args": "ro",
      "kernel_path": "/root/bzImage",
      "kvm_flag": "",
      "migration_downtime": 30,
      "nic_type": "paravirtual",
      "root_path": "/dev/vda2",
      "security_domain": "",
      "security_model": "none",
      "serial_console": true,
      "usb_mouse": "",
      "use_chroot": false,
      "use_localtime": false,
      "vhost_net": false,
      "vnc_bind_address": "0.0.0.0",
      "vnc_password_file": "",
      "vnc_tls": false,
      "vnc_x509_path": "",
      "vnc_x509_verify": false
    },
    "mtime": 1285883187.8692,
    "name": "vm2.example.bak",
    "network_port": 11165,
    "nic.bridges": [
      "br42"
    ],
    "nic.ips": [
      null
    ],
    "nic.links": [
      "br42"
    ],
    "nic.macs": [
      "aa:00:00:c5:47:2e"
    ],
    "nic.modes": [
      "bridged"
    ],
    "oper_ram": "-",
    "oper_state": false,
    "oper_vcpus": "-",
    "os": "image+gentoo-hardened-cf",
    "pnode": "gtest1.example.bak",
    "serial_no": 8,
    "snodes": [],
    "status": "running",
    "tags": [],
    "uuid": "27bac3d3-f634-4dee-aa60-ed2eeb5f2287"
  }
]`

	Node = `{
  "cnodes": 1,
  "csockets": 3,
  "ctime": 1285799513.4741,
  "ctotal": 2,
  "dfree": 2222,
  "drained": false,
  "dtotal": 6666,
  "master_candidate": true,
  "mfree": 1111,
  "mnode": 586,
  "mtime": 1285883187.8692,
  "mtotal": 9999,
  "name": "gtest1.example.bak",
  "offline": false,
  "pinst_cnt": 2,
  "pinst_list": [
    "gimager.example.bak",
    "gimager3.example.bak"
  ],
  "pip": "10.1.0.136",
  "role": "M",
  "serial_no": 1,
  "sinst_cnt": 0,
  "sinst_list": [],
  "sip": "192.168.16.136",
  "tags": [],
  "uuid": "1fee760b-b240-4d7a-a514-5c9441877a01"
}`

	Nodes = `[
  "gtest1.example.bak",
  "gtest2.example.bak",
  "gtest3.example.bak"
]`

	NodesBulk = `[
  {
    "cnodes": 1,
    "csockets": 1,
    "ctime": null,
    "ctotal": 2,
    "dfree": 56092,
    "drained": false,
    "dtotal": 66460,
    "master_candidate": true,
    "mfree": 1187,
    "mnode": 586,
    "mtime": null,
    "mtotal": 1997,
    "name": "gtest1.example.bak",
    "offline": false,
    "pinst_cnt": 2,
    "pinst_list": [
      "gimager.example.bak",
      "gimager3.example.bak"
    ],
    "pip": "10.1.0.136",
    "role": "M",
    "serial_no": 1,
    "sinst_cnt": 0,
    "sinst_list": [],
    "sip": "192.168.16.136",
    "tags": [],
    "uuid": "1fee760b-b240-4d7a-a514-5c9441877a01"
  },
  {
    "cnodes": 1,
    "csockets": 1,
    "ctime": null,
    "ctotal": 2,
    "dfree": 56092,
    "drained": false,
    "dtotal": 66460,
    "master_candidate": true,
    "mfree": 1187,
    "mnode": 586,
    "mtime": null,
    "mtotal": 1997,
    "name": "gtest2.example.bak",
    "offline": false,
    "pinst_cnt": 0,
    "pinst_list": [],
    "pip": "10.1.0.136",
    "role": "M",
    "serial_no": 1,
    "sinst_cnt": 0,
    "sinst_list": [],
    "sip": "192.168.16.136",
    "tags": [],
    "uuid": "1fee760b-b240-4d7a-a514-5c9441877a01"
  },
  {
    "cnodes": null,
    "csockets": null,
    "ctime": 1272388723.7259,
    "ctotal": null,
    "dfree": null,
    "drained": false,
    "dtotal": null,
    "master_candidate": false,
    "mfree": null,
    "mnode": null,
    "mtime": 1293527598.306725,
    "mtotal": null,
    "name": "gtest3.example.bak",
    "offline": true,
    "pinst_cnt": 0,
    "pinst_list": [],
    "pip": "10.192.0.179",
    "role": "O",
    "serial_no": 2,
    "sinst_cnt": 0,
    "sinst_list": [],
    "sip": "192.168.166.179",
    "tags": [],
    "uuid": "5b1001e7-2595-47d4-a1ae-5a6da7b461ca"
  }
]`

	Info = `{
  "architecture": [
    "64bit",
    "x86_64"
  ],
  "beparams": {
    "default": {
      "auto_balance": true,
      "memory": 512,
      "vcpus": 2
    }
  },
  "candidate_pool_size": 10,
  "config_version": 2020000,
  "ctime": 1270685309.818239,
  "default_hypervisor": "kvm",
  "default_iallocator": "",
  "drbd_usermode_helper": null,
  "enabled_hypervisors": [
    "kvm"
  ],
  "export_version": 0,
  "file_storage_dir": "/var/lib/ganeti-storage/file",
  "hvparams": {
    "kvm": {
      "acpi": true,
      "boot_order": "disk",
      "cdrom_image_path": "",
      "disk_cache": "default",
      "disk_type": "paravirtual",
      "initrd_path": "",
      "kernel_args": "ro",
      "kernel_path": "",
      "kvm_flag": "",
      "migration_bandwidth": 32,
      "migration_downtime": 30,
      "migration_mode": "live",
      "migration_port": 8102,
      "nic_type": "paravirtual",
      "root_path": "/dev/vda2",
      "security_domain": "",
      "security_model": "none",
      "serial_console": true,
      "usb_mouse": "",
      "use_chroot": false,
      "use_localtime": false,
      "vhost_net": false,
      "vnc_bind_address": "0.0.0.0",
      "vnc_password_file": "",
      "vnc_tls": false,
      "vnc_x509_path": "",
      "vnc_x509_verify": false
    }
  },
  "maintain_node_health": false,
  "master": "gtest1.example.bak",
  "master_netdev": "br42",
  "mtime": 1283552454.299892,
  "name": "ganeti-test.example.bak",
  "nicparams": {
    "default": {
      "link": "br42",
      "mode": "bridged"
    }
  },
  "os_api_version": 20,
  "os_hvp": {},
  "osparams": {},
  "protocol_version": 40,
  "reserved_lvs": [],
  "software_version": "2.2.0~rc1",
  "tags": [],
  "uid_pool": [],
  "uuid": "a22576ba-9158-4336-8590-a497306f84b9",
  "volume_group_name": "ganeti"
}`

	XenInfo = `{
  "architecture": [
    "64bit",
    "x86_64"
  ],
  "beparams": {
    "default": {
      "auto_balance": true,
      "memory": 512,
      "vcpus": 2
    }
  },
  "blacklisted_os": [],
  "candidate_pool_size": 10,
  "config_version": 2040000,
  "ctime": 1301603254.797797,
  "default_hypervisor": "xen-pvm",
  "default_iallocator": "",
  "drbd_usermode_helper": "",
  "enabled_hypervisors": [
    "xen-pvm",
    "xen-hvm"
  ],
  "export_version": 0,
  "file_storage_dir": "/srv/ganeti/file-storage",
  "hidden_os": [],
  "hvparams": {
    "xen-hvm": {
      "acpi": true,
      "blockdev_prefix": "hd",
      "boot_order": "cd",
      "cdrom_image_path": "",
      "device_model": "/usr/lib/xen/bin/qemu-dm",
      "disk_type": "paravirtual",
      "kernel_path": "/usr/lib/xen/boot/hvmloader",
      "migration_mode": "non-live",
      "migration_port": 8002,
      "nic_type": "rtl8139",
      "pae": true,
      "use_localtime": false,
      "vnc_bind_address": "0.0.0.0",
      "vnc_password_file": "/etc/ganeti/vnc-cluster-password"
    },
    "xen-pvm": {
      "blockdev_prefix": "sd",
      "bootloader_args": "",
      "bootloader_path": "",
      "initrd_path": "/boot/initrd-2.6-xenU",
      "kernel_args": "ro",
      "kernel_path": "/boot/vmlinuz-2.6-xenU",
      "migration_mode": "live",
      "migration_port": 8002,
      "root_path": "/dev/xvda1",
      "use_bootloader": false
    }
  },
  "maintain_node_health": false,
  "master": "gtest3.example.bak",
  "master_netdev": "br42",
  "mtime": 1301954099.043431,
  "name": "ganeti-xen.example.bak",
  "ndparams": {
    "oob_program": ""
  },
  "nicparams": {
    "default": {
      "link": "br42",
      "mode": "bridged"
    }
  },
  "os_api_version": 20,
  "os_hvp": {},
  "osparams": {},
  "prealloc_wipe_disks": false,
  "primary_ip_version": 4,
  "protocol_version": 2040000,
  "reserved_lvs": [],
  "software_version": "2.4.1",
  "tags": [],
  "uid_pool": [],
  "uuid": "355c4147-bbcd-4213-9e84-7095343b1595",
  "volume_group_name": "ganeti"
}`

	OperatingSystems = `[
  "image+debian-osgeo",
  "image+ubuntu-lucid"
]`

	XenOperatingSystems = `[
  "debootstrap+default",
  "image+default"
]`

	Job = `{
  "end_ts": [
    1291845036,
    492131
  ],
  "id": "1",
  "oplog": [
    []
  ],
  "opresult": [
    null
  ],
  "ops": [
    {
      "OP_ID": "OP_INSTANCE_SHUTDOWN",
      "debug_level": 0,
      "dry_run": false,
      "instance_name": "gimager.example.bak",
      "timeout": 120
    }
  ],
  "opstatus": [
    "success"
  ],
  "received_ts": [
    1291845002,
    555722
  ],
  "start_ts": [
    1291845002,
    595336
  ],
  "status": "success",
  "summary": [
    "INSTANCE_SHUTDOWN(gimager.example.bak)"
  ]
}`

	JobRunning = `{
  "end_ts": [
    1291845036,
    492131
  ],
  "id": "1",
  "oplog": [
    []
  ],
  "opresult": [
    null
  ],
  "ops": [
    {
      "OP_ID": "OP_INSTANCE_SHUTDOWN",
      "debug_level": 0,
      "dry_run": false,
      "instance_name": "gimager.example.bak",
      "timeout": 120
    }
  ],
  "opstatus": [
    "running"
  ],
  "received_ts": [
    1291845002,
    555722
  ],
  "start_ts": [
    1291845002,
    595336
  ],
  "status": "running",
  "summary": [
    "INSTANCE_SHUTDOWN(gimager.example.bak)"
  ]
}`

	JobError = `{
  "end_ts": [
    1291836084,
    802444
  ],
  "id": "1",
  "oplog": [
    []
  ],
  "opresult": [
    [
      "OpExecError",
      [
        "Could not reboot instance:                             Cannot reboot instance gimager.example.bak                             that is not running"
      ]
    ]
  ],
  "ops": [
    {
      "OP_ID": "OP_INSTANCE_REBOOT",
      "debug_level": 0,
      "dry_run": false,
      "ignore_secondaries": false,
      "instance_name": "gimager.example.bak",
      "reboot_type": "hard",
      "shutdown_timeout": 120
    }
  ],
  "opstatus": [
    "error"
  ],
  "received_ts": [
    1291836084,
    639295
  ],
  "start_ts": [
    1291836084,
    673097
  ],
  "status": "error",
  "summary": [
    "INSTANCE_REBOOT(gimager.example.bak)"
  ]
}`

	JobDeleteSuccess = `{
  "end_ts": [
    1295224140,
    247101
  ],
  "id": "17050",
  "oplog": [
    []
  ],
  "opresult": [
    null
  ],
  "ops": [
    {
      "OP_ID": "OP_INSTANCE_REMOVE",
      "debug_level": 0,
      "dry_run": false,
      "ignore_failures": false,
      "instance_name": "test.gwm.example.org",
      "shutdown_timeout": 120
    }
  ],
  "opstatus": [
    "success"
  ],
  "received_ts": [
    1295224139,
    489597
  ],
  "start_ts": [
    1295224139,
    507156
  ],
  "status": "success",
  "summary": [
    "INSTANCE_REMOVE(kennym4.gwm.example.org)"
  ]
}`

	JobLog = `{
  "end_ts": [
    1292007990,
    759365
  ],
  "id": "121061",
  "oplog": [
    [
      [
        1,
        [
          1292007953,
          699881
        ],
        "message",
        " - INFO: Selected nodes for instance gimager3.example.bak via                           iallocator hail: gtest2.example.bak"
      ],
      [
        2,
        [
          1292007953,
          979254
        ],
        "message",
        "* creating instance disks..."
      ],
      [
        3,
        [
          1292007954,
          276561
        ],
        "message",
        "adding instance gimager3.example.bak to cluster config"
      ],
      [
        4,
        [
          1292007954,
          357390
        ],
        "message",
        " - INFO: Waiting for instance gimager3.example.bak to sync                           disks."
      ],
      [
        5,
        [
          1292007954,
          496430
        ],
        "message",
        " - INFO: Instance gimager3.example.bak's disks are in sync."
      ],
      [
        6,
        [
          1292007954,
          498135
        ],
        "message",
        "* running the instance OS create scripts..."
      ],
      [
        7,
        [
          1292007990,
          267330
        ],
        "message",
        "* starting instance..."
      ]
    ]
  ],
  "opresult": [
    [
      "gtest2.example.bak"
    ]
  ],
  "ops": [
    {
      "OP_ID": "OP_INSTANCE_CREATE",
      "beparams": {},
      "debug_level": 0,
      "disk_template": "plain",
      "disks": [
        {
          "size": 2000
        }
      ],
      "dry_run": false,
      "file_driver": "loop",
      "file_storage_dir": null,
      "force_variant": false,
      "hvparams": {
        "boot_order": "disk",
        "cdrom_image_path": "",
        "kernel_path": "",
        "root_path": "/dev/vda2",
        "serial_console": true
      },
      "hypervisor": "kvm",
      "iallocator": "hail",
      "identify_defaults": false,
      "instance_name": "gimager3.example.bak",
      "ip_check": true,
      "mode": "create",
      "name_check": true,
      "nics": [
        {}
      ],
      "no_install": null,
      "os_type": "image+ubuntu-maverick",
      "osparams": {},
      "pnode": "gtest2.example.bak",
      "snode": null,
      "source_handshake": null,
      "source_instance_name": null,
      "source_x509_ca": null,
      "src_node": null,
      "src_path": null,
      "start": true,
      "wait_for_sync": true
    }
  ],
  "opstatus": [
    "success"
  ],
  "received_ts": [
    1292007950,
    338883
  ],
  "start_ts": [
    1292007950,
    367402
  ],
  "status": "success",
  "summary": [
    "INSTANCE_CREATE(gimager3.example.bak)"
  ]
}`
)
